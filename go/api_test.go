package brewserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/brew-ha-ha/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/Apurer/brew-ha-ha/internal/domains/catalog/application"
	storememory "github.com/Apurer/brew-ha-ha/internal/domains/store/adapters/memory"
	storeapp "github.com/Apurer/brew-ha-ha/internal/domains/store/application"
	usermemory "github.com/Apurer/brew-ha-ha/internal/domains/users/adapters/memory"
	"github.com/Apurer/brew-ha-ha/internal/domains/users/adapters/tokens"
	userapp "github.com/Apurer/brew-ha-ha/internal/domains/users/application"
	"github.com/Apurer/brew-ha-ha/internal/platform/fixtures"
	apierrors "github.com/Apurer/brew-ha-ha/internal/shared/errors"
)

type testServer struct {
	router *gin.Engine
	access string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	catalogRepo := catalogmemory.NewRepository()
	catalogService := catalogapp.NewService(catalogRepo)
	products, err := fixtures.Default()
	require.NoError(t, err)
	_, err = catalogService.SeedIfEmpty(ctx, products)
	require.NoError(t, err)

	issuer, err := tokens.NewIssuer([]byte("handler-secret"), "brew-ha-ha", 5*time.Minute, time.Hour)
	require.NoError(t, err)
	userService := userapp.NewService(usermemory.NewRepository(), usermemory.NewSessionStore(), issuer)
	storeService := storeapp.NewService(storememory.NewRepository(catalogRepo),
		storeapp.WithIdempotencyStore(storememory.NewIdempotencyStore()))

	router := NewRouterWithGinEngine(gin.New(), ApiHandleFunctions{
		ProductAPI: NewProductAPI(catalogService),
		OrderAPI:   NewOrderAPI(storeService),
		UserAPI:    NewUserAPI(userService),
		Auth:       BearerAuth(userService),
	})
	srv := &testServer{router: router}

	rec := srv.do(t, http.MethodPost, "/signup", `{"username":"barista","password":"latte42"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = srv.do(t, http.MethodPost, "/token", `{"username":"barista","password":"latte42"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pair map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	srv.access = pair["access"]
	return srv
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) authed(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, method, path, body, map[string]string{"Authorization": "Bearer " + s.access})
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) apierrors.ProblemDetail {
	t.Helper()
	assert.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	var problem apierrors.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func muffinQuantity(t *testing.T, s *testServer) float64 {
	t.Helper()
	rec := s.authed(t, http.MethodGet, "/products/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var product map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	assert.Equal(t, "muffin", product["product_name"])
	assert.Equal(t, 2.5, product["price"])
	return product["quantity"].(float64)
}

func TestMuffinScenario(t *testing.T) {
	srv := newTestServer(t)
	require.Equal(t, float64(5), muffinQuantity(t, srv))

	rec := srv.authed(t, http.MethodPost, "/orders", `{"payment_method":"Credit","order_items":[{"product_id":2,"quantity":2}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "Credit", order["payment_method"])
	items := order["order_items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "muffin", items[0].(map[string]any)["product_name"])
	assert.Equal(t, float64(3), muffinQuantity(t, srv))

	rec = srv.authed(t, http.MethodPost, "/orders", `{"payment_method":"Credit","order_items":[{"product_id":2,"quantity":10}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Equal(t, apierrors.TypeValidation, problem.Type)
	assert.Equal(t, "muffin is out of stock", problem.Detail)
	assert.Equal(t, float64(3), muffinQuantity(t, srv))

	id := int64(order["id"].(float64))
	rec = srv.authed(t, http.MethodGet, "/orders/"+strconv.FormatInt(id, 10), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var loaded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loaded))
	assert.Equal(t, order["id"], loaded["id"])
}

func TestPlaceOrder_ValidationAndNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.authed(t, http.MethodPost, "/orders", `{"payment_method":"Cash","order_items":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Equal(t, apierrors.TypeValidation, problem.Type)
	fields, ok := problem.Extensions["fields"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "payment_method")
	assert.Contains(t, fields, "order_items")

	rec = srv.authed(t, http.MethodPost, "/orders", `{"payment_method":" Credit ","order_items":[{"product_id":2,"quantity":1}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, float64(5), muffinQuantity(t, srv))

	rec = srv.authed(t, http.MethodPost, "/orders", `{"payment_method":"Debit","order_items":[{"product_id":999,"quantity":1}]}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.DetailNotFound, decodeProblem(t, rec).Detail)

	rec = srv.authed(t, http.MethodPost, "/orders", `{"payment_method":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierrors.TypeBadRequest, decodeProblem(t, rec).Type)
}

func TestPlaceOrder_IdempotencyKey(t *testing.T) {
	srv := newTestServer(t)
	headers := map[string]string{"Authorization": "Bearer " + srv.access, IdempotencyKeyHeader: "retry-1"}
	body := `{"payment_method":"Debit","order_items":[{"product_id":2,"quantity":1}]}`

	first := srv.do(t, http.MethodPost, "/orders", body, headers)
	require.Equal(t, http.StatusCreated, first.Code)
	second := srv.do(t, http.MethodPost, "/orders", body, headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, float64(4), muffinQuantity(t, srv))

	conflict := srv.do(t, http.MethodPost, "/orders", `{"payment_method":"Debit","order_items":[{"product_id":2,"quantity":2}]}`, headers)
	require.Equal(t, http.StatusConflict, conflict.Code)
	assert.Equal(t, apierrors.TypeConflict, decodeProblem(t, conflict).Type)
}

func TestGetResources_BadIDAndMissing(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.authed(t, http.MethodGet, "/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = srv.authed(t, http.MethodGet, "/products/404", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product", decodeProblem(t, rec).Extensions["resourceType"])
	rec = srv.authed(t, http.MethodGet, "/orders/77", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "order", decodeProblem(t, rec).Extensions["resourceType"])

	rec = srv.authed(t, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var products []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.NotEmpty(t, products)
	assert.Equal(t, float64(1), products[0]["id"])
}

func TestSecuredRoutes_RequireAccessToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/ping", "/products", "/products/1", "/orders/1"} {
		rec := srv.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"), path)
	}

	rec := srv.do(t, http.MethodGet, "/ping", "", map[string]string{"Authorization": "Bearer not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apierrors.DetailUnauthorized, decodeProblem(t, rec).Detail)

	rec = srv.do(t, http.MethodPost, "/token", `{"username":"barista","password":"latte42"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pair map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	rec = srv.do(t, http.MethodGet, "/ping", "", map[string]string{"Authorization": "Bearer " + pair["refresh"]})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.authed(t, http.MethodGet, "/ping", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Test ping successful!"}`, rec.Body.String())
}

func TestTokenRefresh(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/token", `{"username":"barista","password":"latte42"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pair map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))

	rec = srv.do(t, http.MethodPost, "/token/refresh", `{"refresh":"`+pair["refresh"]+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var access map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &access))
	require.NotEmpty(t, access["access"])
	rec = srv.do(t, http.MethodGet, "/ping", "", map[string]string{"Authorization": "Bearer " + access["access"]})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/token/refresh", `{"refresh":"`+pair["access"]+`"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = srv.do(t, http.MethodPost, "/token/refresh", `{}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupAndLoginFailures(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/signup", `{"username":"bad name","password":"latte42"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "username can only contain letters and numbers", decodeProblem(t, rec).Detail)
	rec = srv.do(t, http.MethodPost, "/signup", `{"username":"barista","password":"other1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = srv.do(t, http.MethodPost, "/signup", `{"username":"","password":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = srv.do(t, http.MethodPost, "/signup", `{"username":" bob ","password":"latte42"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/token", `{"username":"barista","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = srv.do(t, http.MethodPost, "/token", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_FailsClosedWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouterWithGinEngine(gin.New(), ApiHandleFunctions{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/signup", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
