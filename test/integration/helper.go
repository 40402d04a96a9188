// Package integration 针对运行中服务的端到端测试
//
// 教学说明：
// 单元测试用SQLite和redismock隔离外部依赖；这里走真实的MySQL、Redis和完整的HTTP链路，
// 验证Wire组装、迁移和配置是否正确。
//
// 运行方式：
//
//	docker compose up -d && go run ./cmd/seed && go run ./cmd/api
//	BOOKSTORE_TEST_BASE_URL=http://localhost:8080 go test -v ./test/integration/...
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Timeout HTTP请求超时时间
const Timeout = 10 * time.Second

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// StockData 库存记录响应数据
type StockData struct {
	StoreID  uint `json:"store_id"`
	BookID   uint `json:"book_id"`
	Quantity int  `json:"quantity"`
}

// baseURL 未设置环境变量时跳过
func baseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("BOOKSTORE_TEST_BASE_URL")
	if url == "" {
		t.Skip("未设置BOOKSTORE_TEST_BASE_URL,跳过集成测试")
	}
	return url + "/api/v1"
}

// DoJSON 发送请求并解析JSON响应
// data为nil时不带请求体
func DoJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	require.NoError(t, json.Unmarshal(raw, &result), "解析JSON响应失败: %s", string(raw))
	return &result
}

// LoginAdmin 用cmd/seed创建的管理员登录
func LoginAdmin(t *testing.T, base string) string {
	t.Helper()
	email := os.Getenv("BOOKSTORE_SEED_ADMIN_EMAIL")
	if email == "" {
		email = "admin@bookstore.com"
	}
	password := os.Getenv("BOOKSTORE_SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	resp := DoJSON(t, http.MethodPost, base+"/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, 0, resp.Code, "管理员登录失败: %s", resp.Message)

	var data LoginData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.AccessToken
}

// Unique 带时间戳的唯一名称，测试可重复运行
func Unique(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, time.Now().UnixNano())
}

// GenerateTestISBN ISBN-13格式：978 + 10位数字
func GenerateTestISBN() string {
	return fmt.Sprintf("978%010d", time.Now().UnixNano()%10000000000)
}

// CreateID 调用创建接口并返回data.id
func CreateID(t *testing.T, url string, data interface{}, token string) uint {
	t.Helper()
	resp := DoJSON(t, http.MethodPost, url, data, token)
	require.Equal(t, 0, resp.Code, "创建失败: %s", resp.Message)

	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	return created.ID
}
