package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookledger/internal/application/book"
	"github.com/xiebiao/bookledger/internal/interface/http/dto"
	"github.com/xiebiao/bookledger/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	createBookUseCase *appbook.CreateBookUseCase
	listBooksUseCase  *appbook.ListBooksUseCase
	getBookUseCase    *appbook.GetBookUseCase
	updateBookUseCase *appbook.UpdateBookUseCase
	deleteBookUseCase *appbook.DeleteBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	createBookUseCase *appbook.CreateBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	getBookUseCase *appbook.GetBookUseCase,
	updateBookUseCase *appbook.UpdateBookUseCase,
	deleteBookUseCase *appbook.DeleteBookUseCase,
) *BookHandler {
	return &BookHandler{
		createBookUseCase: createBookUseCase,
		listBooksUseCase:  listBooksUseCase,
		getBookUseCase:    getBookUseCase,
		updateBookUseCase: updateBookUseCase,
		deleteBookUseCase: deleteBookUseCase,
	}
}

// CreateBook 创建图书
// @Summary      创建图书
// @Description  管理员录入图书目录,ISBN不能重复
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "无权限"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.createBookUseCase.Execute(c.Request.Context(), appbook.CreateBookRequest{
		ISBN:   req.ISBN,
		Title:  req.Title,
		Author: req.Author,
		Price:  req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toBookDTO(result))
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页查询,支持关键词搜索(标题、作者、ISBN)和排序
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int    false "页码"
// @Param        page_size query int    false "每页数量"
// @Param        keyword   query string false "关键词"
// @Param        sort_by   query string false "排序" Enums(price_asc, price_desc, title_asc, created_at_desc)
// @Success      200 {object} response.Response{data=response.PageData{list=[]dto.BookResponse}}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		SortBy:   req.SortBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.BookResponse, len(result.List))
	for i, b := range result.List {
		list[i] = toBookDTO(b)
	}
	response.SuccessWithPage(c, list, result.Total, result.Page, result.PageSize)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.getBookUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookDTO(result))
}

// UpdateBook 更新图书
// @Summary      更新图书
// @Description  部分更新,只修改请求中出现的字段
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                   true "图书ID"
// @Param        request body dto.UpdateBookRequest true "要修改的字段"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.updateBookUseCase.Execute(c.Request.Context(), id, appbook.UpdateBookRequest{
		ISBN:   req.ISBN,
		Title:  req.Title,
		Author: req.Author,
		Price:  req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toBookDTO(result))
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Description  仍有书店持有该图书时拒绝删除
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "图书仍有门店库存"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.deleteBookUseCase.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func toBookDTO(b *appbook.BookResponse) *dto.BookResponse {
	return &dto.BookResponse{
		ID:        b.ID,
		ISBN:      b.ISBN,
		Title:     b.Title,
		Author:    b.Author,
		Price:     b.Price,
		PriceYuan: dto.FormatPriceYuan(b.Price),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
