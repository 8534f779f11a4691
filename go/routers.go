package brewserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Secured routes require a bearer access token.
	Secured bool
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the API routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	auth := handleFunctions.Auth
	if auth == nil {
		auth = denyAll
	}
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := []gin.HandlerFunc{route.HandlerFunc}
		if route.Secured {
			handlers = append([]gin.HandlerFunc{auth}, handlers...)
		}
		router.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

// DefaultHandleFunc is the default handler used when an API is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ApiHandleFunctions groups the API implementations and the bearer gate.
type ApiHandleFunctions struct {
	// Routes for the ProductAPI part of the API
	ProductAPI ProductAPI
	// Routes for the OrderAPI part of the API
	OrderAPI OrderAPI
	// Routes for the UserAPI part of the API
	UserAPI UserAPI
	// Auth guards every secured route. Secured routes reject all requests when it is nil.
	Auth gin.HandlerFunc
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"Signup",
			http.MethodPost,
			"/signup",
			handleFunctions.UserAPI.Signup,
			false,
		},
		{
			"ObtainToken",
			http.MethodPost,
			"/token",
			handleFunctions.UserAPI.ObtainToken,
			false,
		},
		{
			"RefreshToken",
			http.MethodPost,
			"/token/refresh",
			handleFunctions.UserAPI.RefreshToken,
			false,
		},
		{
			"Healthz",
			http.MethodGet,
			"/healthz",
			Healthz,
			false,
		},
		{
			"Ping",
			http.MethodGet,
			"/ping",
			handleFunctions.UserAPI.Ping,
			true,
		},
		{
			"ListProducts",
			http.MethodGet,
			"/products",
			handleFunctions.ProductAPI.ListProducts,
			true,
		},
		{
			"GetProduct",
			http.MethodGet,
			"/products/:productId",
			handleFunctions.ProductAPI.GetProduct,
			true,
		},
		{
			"PlaceOrder",
			http.MethodPost,
			"/orders",
			handleFunctions.OrderAPI.PlaceOrder,
			true,
		},
		{
			"GetOrder",
			http.MethodGet,
			"/orders/:orderId",
			handleFunctions.OrderAPI.GetOrder,
			true,
		},
	}
}
