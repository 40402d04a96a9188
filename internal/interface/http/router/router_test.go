package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appbook "github.com/xiebiao/bookledger/internal/application/book"
	"github.com/xiebiao/bookledger/internal/application/catalog"
	appinventory "github.com/xiebiao/bookledger/internal/application/inventory"
	appstore "github.com/xiebiao/bookledger/internal/application/store"
	appuser "github.com/xiebiao/bookledger/internal/application/user"
	"github.com/xiebiao/bookledger/internal/domain/book"
	"github.com/xiebiao/bookledger/internal/domain/store"
	"github.com/xiebiao/bookledger/internal/domain/user"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/dbtest"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookledger/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookledger/internal/interface/http/handler"
	"github.com/xiebiao/bookledger/internal/interface/http/middleware"
	"github.com/xiebiao/bookledger/internal/interface/http/router"
	apperrors "github.com/xiebiao/bookledger/pkg/errors"
	"github.com/xiebiao/bookledger/pkg/jwt"
)

// memBlacklist 内存黑名单，代替Redis
type memBlacklist struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func (b *memBlacklist) IsInBlacklist(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens[token], nil
}

func (b *memBlacklist) add(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = true
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	engine    *gin.Engine
	jwt       *jwt.Manager
	blacklist *memBlacklist
	storeID   uint
	bookID    uint
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	db := dbtest.NewSQLite(t)

	userRepo := mysql.NewUserRepository(db)
	storeRepo := mysql.NewStoreRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	txManager := mysql.NewTxManager(db)

	st, err := store.NewStore("Downtown Books", "1 Main Street")
	require.NoError(t, err)
	require.NoError(t, storeRepo.Create(ctx, st))
	b := book.NewBook("9780132350884", "Clean Code", "Robert C. Martin", 4499)
	require.NoError(t, bookRepo.Create(ctx, b))

	userService := user.NewServiceWithCost(userRepo, bcrypt.MinCost)
	bookService := book.NewService(bookRepo)
	jwtManager := jwt.NewManager("router-test-secret", time.Hour, 24*time.Hour)
	redisClient, _ := redismock.NewClientMock()
	sessions := redis.NewSessionStore(redisClient)

	ledger := appinventory.NewLedger(
		mysql.NewInventoryRepository(db),
		mysql.NewInventoryLogRepository(db),
		catalog.NewLookup(storeRepo, bookRepo),
		txManager,
		nil,
		nil,
	)

	blacklist := &memBlacklist{tokens: make(map[string]bool)}
	engine := router.New(
		router.Options{Mode: gin.TestMode},
		zerolog.Nop(),
		middleware.NewAuthMiddleware(jwtManager, blacklist),
		router.Handlers{
			User: handler.NewUserHandler(
				appuser.NewRegisterUseCase(userService),
				appuser.NewLoginUseCase(userService, jwtManager, sessions),
				appuser.NewLogoutUseCase(sessions),
				appuser.NewRefreshTokenUseCase(userService, jwtManager),
			),
			Book: handler.NewBookHandler(
				appbook.NewCreateBookUseCase(bookService),
				appbook.NewListBooksUseCase(bookService),
				appbook.NewGetBookUseCase(bookService),
				appbook.NewUpdateBookUseCase(bookService),
				appbook.NewDeleteBookUseCase(bookService, ledger, txManager),
			),
			Store:     handler.NewStoreHandler(appstore.NewUseCase(store.NewService(storeRepo))),
			Inventory: handler.NewInventoryHandler(ledger),
		},
	)

	return &testServer{
		engine:    engine,
		jwt:       jwtManager,
		blacklist: blacklist,
		storeID:   st.ID,
		bookID:    b.ID,
	}
}

func (s *testServer) token(t *testing.T, userID uint, role user.Role) string {
	t.Helper()
	pair, err := s.jwt.GenerateToken(userID, fmt.Sprintf("user%d@bookstore.com", userID), string(role))
	require.NoError(t, err)
	return pair.AccessToken
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) apiResponse {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *testServer) stockPath(suffix string) string {
	return fmt.Sprintf("/api/v1/bookstores/%d/books/%d%s", s.storeID, s.bookID, suffix)
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, 0, resp.Code)
}

func TestAccessGate(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, 1, user.RoleAdmin)
	manager := s.token(t, 2, user.RoleStoreManager)
	reader := s.token(t, 3, user.RoleUser)

	t.Run("未登录", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, s.stockPath("/quantity"), "", nil)
		assert.Equal(t, apperrors.ErrCodeUnauthorized, resp.Code)
	})

	t.Run("Token格式错误", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, s.stockPath("/quantity"), nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)

		var resp apiResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, apperrors.ErrCodeInvalidToken, resp.Code)
	})

	t.Run("普通用户可以查询", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, s.stockPath("/quantity"), reader, nil)
		assert.Equal(t, 0, resp.Code)
	})

	t.Run("普通用户不能增加库存", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, s.stockPath(""), reader, map[string]int{"quantity": 1})
		assert.Equal(t, apperrors.ErrCodeForbidden, resp.Code)
	})

	t.Run("店长可以增加库存", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, s.stockPath(""), manager, map[string]int{"quantity": 1})
		assert.Equal(t, 0, resp.Code)
	})

	t.Run("店长不能创建图书", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/v1/books", manager, map[string]interface{}{
			"isbn": "0201633612", "title": "Design Patterns", "author": "Gang of Four", "price": 5999,
		})
		assert.Equal(t, apperrors.ErrCodeForbidden, resp.Code)
	})

	t.Run("管理员可以创建图书", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/api/v1/books", admin, map[string]interface{}{
			"isbn": "0201633612", "title": "Design Patterns", "author": "Gang of Four", "price": 5999,
		})
		require.Equal(t, 0, resp.Code, resp.Message)

		var b struct {
			ISBN      string `json:"isbn"`
			PriceYuan string `json:"price_yuan"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &b))
		assert.Equal(t, "0201633612", b.ISBN)
		assert.Equal(t, "59.99", b.PriceYuan)
	})

	t.Run("未知角色被拒绝", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/v1/books", s.token(t, 4, user.Role("GUEST")), nil)
		assert.Equal(t, apperrors.ErrCodeForbidden, resp.Code)
	})

	t.Run("黑名单中的Token", func(t *testing.T) {
		revoked := s.token(t, 5, user.RoleAdmin)
		s.blacklist.add(revoked)
		resp := s.do(t, http.MethodGet, "/api/v1/books", revoked, nil)
		assert.Equal(t, apperrors.ErrCodeTokenExpired, resp.Code)
	})
}

func TestInventoryEndpoints(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, 2, user.RoleStoreManager)

	type record struct {
		StoreID  uint `json:"store_id"`
		BookID   uint `json:"book_id"`
		Quantity int  `json:"quantity"`
	}
	decode := func(t *testing.T, resp apiResponse) record {
		t.Helper()
		require.Equal(t, 0, resp.Code, resp.Message)
		var r record
		require.NoError(t, json.Unmarshal(resp.Data, &r))
		return r
	}

	rec := decode(t, s.do(t, http.MethodPost, s.stockPath(""), manager, map[string]int{"quantity": 10}))
	assert.Equal(t, 10, rec.Quantity)

	rec = decode(t, s.do(t, http.MethodDelete, s.stockPath(""), manager, map[string]int{"quantity": 4}))
	assert.Equal(t, 6, rec.Quantity)

	rec = decode(t, s.do(t, http.MethodGet, s.stockPath("/quantity"), manager, nil))
	assert.Equal(t, 6, rec.Quantity)

	t.Run("库存不足返回requested和available", func(t *testing.T) {
		resp := s.do(t, http.MethodDelete, s.stockPath(""), manager, map[string]int{"quantity": 7})
		assert.Equal(t, apperrors.ErrCodeInsufficientStock, resp.Code)

		var details struct {
			Requested int `json:"requested"`
			Available int `json:"available"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &details))
		assert.Equal(t, 7, details.Requested)
		assert.Equal(t, 6, details.Available)
	})

	t.Run("数量必须为正", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, s.stockPath(""), manager, map[string]int{"quantity": 0})
		assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)
		resp = s.do(t, http.MethodPost, s.stockPath(""), manager, map[string]int{"quantity": -3})
		assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)
	})

	t.Run("书店不存在", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookstores/999/books/%d", s.bookID), manager, map[string]int{"quantity": 1})
		assert.Equal(t, apperrors.ErrCodeStoreNotFound, resp.Code)
	})

	t.Run("非法ID", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/v1/bookstores/abc/books/1/quantity", manager, nil)
		assert.Equal(t, apperrors.ErrCodeInvalidParams, resp.Code)
	})

	t.Run("有库存的图书不能删除", func(t *testing.T) {
		admin := s.token(t, 1, user.RoleAdmin)
		resp := s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/books/%d", s.bookID), admin, nil)
		assert.Equal(t, apperrors.ErrCodeBookInStock, resp.Code)
	})

	t.Run("取空后记录删除", func(t *testing.T) {
		resp := s.do(t, http.MethodDelete, s.stockPath(""), manager, map[string]int{"quantity": 6})
		require.Equal(t, 0, resp.Code, resp.Message)
		assert.JSONEq(t, "null", string(resp.Data), "取空时不返回数量为0的记录")

		resp = s.do(t, http.MethodGet, s.stockPath("/quantity"), manager, nil)
		assert.Zero(t, decode(t, resp).Quantity)

		resp = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bookstores/%d/books", s.storeID), manager, nil)
		require.Equal(t, 0, resp.Code)
		var list []record
		require.NoError(t, json.Unmarshal(resp.Data, &list))
		assert.Empty(t, list)
	})

	t.Run("变更日志", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, s.stockPath("/history?page=1&page_size=10"), manager, nil)
		require.Equal(t, 0, resp.Code)

		var page struct {
			List []struct {
				ChangeType string `json:"change_type"`
				Delta      int    `json:"delta"`
				OperatorID uint   `json:"operator_id"`
			} `json:"list"`
			Total int64 `json:"total"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		require.EqualValues(t, 3, page.Total)
		assert.Equal(t, "DEPLETE", page.List[0].ChangeType)
		assert.Equal(t, -6, page.List[0].Delta)
		assert.Equal(t, uint(2), page.List[0].OperatorID, "操作人来自Token")
	})
}

func TestStoreEndpoints(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, 1, user.RoleAdmin)

	resp := s.do(t, http.MethodPost, "/api/v1/bookstores", admin, map[string]string{
		"name": "Uptown Books", "address": "99 Hill Road",
	})
	require.Equal(t, 0, resp.Code, resp.Message)
	var created struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))

	resp = s.do(t, http.MethodPost, "/api/v1/bookstores", admin, map[string]string{
		"name": "Uptown Books", "address": "Elsewhere 1",
	})
	assert.Equal(t, apperrors.ErrCodeStoreNameDuplicate, resp.Code)

	resp = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/bookstores/%d", created.ID), admin, map[string]string{
		"address": "100 Hill Road",
	})
	require.Equal(t, 0, resp.Code, resp.Message)

	resp = s.do(t, http.MethodGet, "/api/v1/bookstores?page=1&page_size=10", admin, nil)
	require.Equal(t, 0, resp.Code)
	var page struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	assert.EqualValues(t, 2, page.Total)
}
