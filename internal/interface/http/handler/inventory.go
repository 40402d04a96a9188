package handler

import (
	"github.com/gin-gonic/gin"

	appinventory "github.com/xiebiao/bookledger/internal/application/inventory"
	"github.com/xiebiao/bookledger/internal/domain/inventory"
	"github.com/xiebiao/bookledger/internal/interface/http/dto"
	"github.com/xiebiao/bookledger/pkg/response"
)

// InventoryHandler 门店库存HTTP处理器
// 设计说明：
// 1. 路径中的书店ID和图书ID组成库存记录的业务主键
// 2. 操作人ID由认证中间件放进request context，账本写变更日志时读取
// 3. 库存不足时响应data里带requested和available
type InventoryHandler struct {
	ledger *appinventory.Ledger
}

// NewInventoryHandler 创建库存处理器
func NewInventoryHandler(ledger *appinventory.Ledger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// AddStock 增加库存
// @Summary      增加库存
// @Description  书店没有该图书时新建记录
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                    true "书店ID"
// @Param        bookId  path int                    true "图书ID"
// @Param        request body dto.StockChangeRequest true "增加数量"
// @Success      200 {object} response.Response{data=dto.StockRecordResponse}
// @Failure      403 {object} response.Response "无权限"
// @Failure      404 {object} response.Response "书店或图书不存在"
// @Router       /api/v1/bookstores/{id}/books/{bookId} [post]
func (h *InventoryHandler) AddStock(c *gin.Context) {
	key, req, ok := h.bindChange(c)
	if !ok {
		return
	}

	rec, err := h.ledger.AddStock(c.Request.Context(), key.StoreID, key.BookID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewStockRecordResponse(rec))
}

// RemoveStock 取出库存
// @Summary      取出库存
// @Description  取出数量不能超过持有量;取空时记录被删除,data为null
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                    true "书店ID"
// @Param        bookId  path int                    true "图书ID"
// @Param        request body dto.StockChangeRequest true "取出数量"
// @Success      200 {object} response.Response{data=dto.StockRecordResponse}
// @Failure      400 {object} response.Response "库存不足(data含requested、available)"
// @Failure      404 {object} response.Response "书店不存在"
// @Router       /api/v1/bookstores/{id}/books/{bookId} [delete]
func (h *InventoryHandler) RemoveStock(c *gin.Context) {
	key, req, ok := h.bindChange(c)
	if !ok {
		return
	}

	rec, err := h.ledger.RemoveStock(c.Request.Context(), key.StoreID, key.BookID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewStockRecordResponse(rec))
}

// GetQuantity 查询库存数量
// @Summary      查询库存数量
// @Description  书店没有该图书时返回0
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int true "书店ID"
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.QuantityResponse}
// @Failure      404 {object} response.Response "书店不存在"
// @Router       /api/v1/bookstores/{id}/books/{bookId}/quantity [get]
func (h *InventoryHandler) GetQuantity(c *gin.Context) {
	key, ok := pathKey(c)
	if !ok {
		return
	}

	qty, err := h.ledger.GetQuantity(c.Request.Context(), key.StoreID, key.BookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.QuantityResponse{StoreID: key.StoreID, BookID: key.BookID, Quantity: qty})
}

// ListStoreStock 书店库存清单
// @Summary      书店库存清单
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书店ID"
// @Success      200 {object} response.Response{data=[]dto.StockRecordResponse}
// @Failure      404 {object} response.Response "书店不存在"
// @Router       /api/v1/bookstores/{id}/books [get]
func (h *InventoryHandler) ListStoreStock(c *gin.Context) {
	storeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	records, err := h.ledger.ListStoreStock(c.Request.Context(), storeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewStockRecordList(records))
}

// History 库存变更日志
// @Summary      库存变更日志
// @Description  最新的在前
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        id        path  int true  "书店ID"
// @Param        bookId    path  int true  "图书ID"
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.ChangeLogResponse}}
// @Router       /api/v1/bookstores/{id}/books/{bookId}/history [get]
func (h *InventoryHandler) History(c *gin.Context) {
	key, ok := pathKey(c)
	if !ok {
		return
	}
	var page dto.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		bindFailed(c, err)
		return
	}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize < 1 {
		page.PageSize = 20
	}

	logs, total, err := h.ledger.History(c.Request.Context(), key.StoreID, key.BookID, page.Page, page.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, dto.NewChangeLogList(logs), total, page.Page, page.PageSize)
}

func (h *InventoryHandler) bindChange(c *gin.Context) (inventory.Key, dto.StockChangeRequest, bool) {
	var req dto.StockChangeRequest
	key, ok := pathKey(c)
	if !ok {
		return key, req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return key, req, false
	}
	return key, req, true
}

func pathKey(c *gin.Context) (inventory.Key, bool) {
	storeID, ok := pathID(c, "id")
	if !ok {
		return inventory.Key{}, false
	}
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return inventory.Key{}, false
	}
	return inventory.Key{StoreID: storeID, BookID: bookID}, true
}
