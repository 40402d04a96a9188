package handler

import (
	"github.com/gin-gonic/gin"

	appstore "github.com/xiebiao/bookledger/internal/application/store"
	"github.com/xiebiao/bookledger/internal/interface/http/dto"
	"github.com/xiebiao/bookledger/pkg/response"
)

// StoreHandler 书店HTTP处理器
type StoreHandler struct {
	useCase *appstore.UseCase
}

// NewStoreHandler 创建书店处理器
func NewStoreHandler(useCase *appstore.UseCase) *StoreHandler {
	return &StoreHandler{useCase: useCase}
}

// CreateStore 创建书店
// @Summary      创建书店
// @Tags         书店
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateStoreRequest true "书店信息"
// @Success      200 {object} response.Response{data=store.StoreResponse}
// @Failure      409 {object} response.Response "书店名称已存在"
// @Router       /api/v1/bookstores [post]
func (h *StoreHandler) CreateStore(c *gin.Context) {
	var req dto.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.useCase.Create(c.Request.Context(), req.Name, req.Address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListStores 书店列表
// @Summary      书店列表
// @Tags         书店
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]store.StoreResponse}}
// @Router       /api/v1/bookstores [get]
func (h *StoreHandler) ListStores(c *gin.Context) {
	var req dto.PageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.useCase.List(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// GetStore 书店详情
// @Summary      书店详情
// @Tags         书店
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书店ID"
// @Success      200 {object} response.Response{data=store.StoreResponse}
// @Failure      404 {object} response.Response "书店不存在"
// @Router       /api/v1/bookstores/{id} [get]
func (h *StoreHandler) GetStore(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.useCase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateStore 更新书店
// @Summary      更新书店
// @Tags         书店
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                    true "书店ID"
// @Param        request body dto.UpdateStoreRequest true "要修改的字段"
// @Success      200 {object} response.Response{data=store.StoreResponse}
// @Failure      404 {object} response.Response "书店不存在"
// @Failure      409 {object} response.Response "书店名称已存在"
// @Router       /api/v1/bookstores/{id} [put]
func (h *StoreHandler) UpdateStore(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.useCase.Update(c.Request.Context(), id, appstore.UpdateStoreRequest{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
