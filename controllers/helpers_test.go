package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tailorbook/tailorbook-api/middleware"
	"github.com/tailorbook/tailorbook-api/models"
	"github.com/tailorbook/tailorbook-api/services"
	"github.com/tailorbook/tailorbook-api/testutil"
)

const (
	tailorAuth0ID = "auth0|tailor"
	allScopes     = middleware.ScopeReadOrders + " " + middleware.ScopeWriteOrders
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.OpenTestDB(t)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// mockAuthMiddleware takes the scope claim as a space separated string
func mockAuthMiddleware(auth0ID, scope, accessToken string) gin.HandlerFunc {
	return testutil.MockAuthMiddleware(auth0ID, accessToken, strings.Fields(scope))
}

// setupMockAuth0Server simulates Auth0's /userinfo endpoint keyed by access token
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		userInfo, exists := userInfoMap[token]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	}))
}

// testEnv is a migrated database with one tailor and customer, served by the full route table
type testEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	tailor   models.Tailor
	customer models.Customer
	files    *services.MockFileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{db: setupTestDB(t)}

	env.tailor = models.Tailor{Auth0ID: tailorAuth0ID, Name: "Amina", Email: "amina@example.com", ShopID: 3}
	require.NoError(t, env.db.Create(&env.tailor).Error)
	env.customer = models.Customer{TailorID: env.tailor.ID, ShopID: 3, Name: "Farah", Phone: "0300-1234567"}
	require.NoError(t, env.db.Create(&env.customer).Error)

	env.files = services.NewMockFileService()
	env.files.SetAsMockForTesting()
	t.Cleanup(func() { services.SetFileService(nil) })

	InitLedger(nil)
	env.router = env.routerFor(tailorAuth0ID, allScopes)
	return env
}

func (e *testEnv) routerFor(auth0ID, scope string) *gin.Engine {
	router := setupTestRouter()
	RegisterRoutes(router.Group("/api/v1"), mockAuthMiddleware(auth0ID, scope, "mock-token"))
	return router
}

// do sends a JSON request and decodes the envelope
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return serve(t, e.router, req)
}

// upload sends a multipart request with one "file" part plus form fields
func (e *testEnv) upload(t *testing.T, path, filename string, content []byte, fields map[string]string) (int, map[string]interface{}) {
	t.Helper()
	return e.uploadAs(t, path, "file", filename, content, fields)
}

func (e *testEnv) uploadAs(t *testing.T, path, field, filename string, content []byte, fields map[string]string) (int, map[string]interface{}) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1"+path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return serve(t, e.router, req)
}

func jsonRequest(t *testing.T, method, target string, body io.Reader) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uintStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func serve(t *testing.T, router *gin.Engine, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "Response body: %s", w.Body.String())
	return w.Code, response
}

func dataOf(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", response)
	return data
}

func errorCode(response map[string]interface{}) string {
	errData, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errData["code"].(string)
	return code
}

// createOrder posts an order for the env customer and returns its id
func (e *testEnv) createOrder(t *testing.T, dress map[string]interface{}) uint {
	t.Helper()
	body := map[string]interface{}{"customer_id": e.customer.ID, "name": "Wedding set"}
	if dress != nil {
		body["dress"] = dress
	}
	status, response := e.do(t, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusCreated, status, "%v", response)
	return uint(dataOf(t, response)["id"].(float64))
}

func (e *testEnv) order(t *testing.T, id uint) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, e.db.First(&order, id).Error)
	return order
}
