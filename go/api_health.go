package brewserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Get /healthz
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
