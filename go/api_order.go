package brewserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/Apurer/brew-ha-ha/internal/domains/store/adapters/http/mapper"
	storeports "github.com/Apurer/brew-ha-ha/internal/domains/store/ports"
)

// IdempotencyKeyHeader lets clients retry POST /orders without placing the order twice.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// OrderAPI wires HTTP transport with the order placement service.
type OrderAPI struct {
	service storeports.Service
}

// NewOrderAPI creates an OrderAPI backed by the provided service.
func NewOrderAPI(service storeports.Service) OrderAPI {
	return OrderAPI{service: service}
}

// Post /orders
// Place an order, decrementing stock for every line or for none
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	if api.service == nil {
		DefaultHandleFunc(c)
		return
	}
	var payload ordermapper.PlaceOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "request body must be a JSON order")
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLength {
		respondBadRequest(c, IdempotencyKeyHeader+" is too long")
		return
	}
	order, err := api.service.PlaceOrder(c.Request.Context(), ordermapper.ToPlaceOrderInput(payload, key))
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ordermapper.FromDomainOrder(order))
}

// Get /orders/:orderId
// Find order by ID
func (api *OrderAPI) GetOrder(c *gin.Context) {
	if api.service == nil {
		DefaultHandleFunc(c)
		return
	}
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		respondOrderServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromDomainOrder(order))
}
