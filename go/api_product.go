package brewserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	catalogmapper "github.com/Apurer/brew-ha-ha/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/brew-ha-ha/internal/domains/catalog/ports"
)

// ProductAPI serves the read-only product catalog.
type ProductAPI struct {
	service catalogports.Service
}

// NewProductAPI creates a ProductAPI backed by the provided service.
func NewProductAPI(service catalogports.Service) ProductAPI {
	return ProductAPI{service: service}
}

// Get /products
// Lists every product ordered by id
func (api *ProductAPI) ListProducts(c *gin.Context) {
	if api.service == nil {
		DefaultHandleFunc(c)
		return
	}
	products, err := api.service.ListProducts(c.Request.Context())
	if err != nil {
		respondProductServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainProducts(products))
}

// Get /products/:productId
// Find product by ID
func (api *ProductAPI) GetProduct(c *gin.Context) {
	if api.service == nil {
		DefaultHandleFunc(c)
		return
	}
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondProductServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromDomainProduct(product))
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		respondBadRequest(c, name+" must be an integer")
		return 0, false
	}
	return id, true
}
