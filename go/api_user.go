package brewserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usermapper "github.com/Apurer/brew-ha-ha/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/brew-ha-ha/internal/domains/users/ports"
	apierrors "github.com/Apurer/brew-ha-ha/internal/shared/errors"
)

const (
	signupMessage = "Signup successful!"
	pingMessage   = "Test ping successful!"
)

// UserAPI exposes signup, token issuance, and the authenticated ping.
type UserAPI struct {
	service userports.Service
}

// NewUserAPI creates a UserAPI backed by the provided service.
func NewUserAPI(service userports.Service) UserAPI {
	return UserAPI{service: service}
}

// Post /signup
// Register a new user
func (api *UserAPI) Signup(c *gin.Context) {
	if api.service == nil {
		DefaultHandleFunc(c)
		return
	}
	var payload usermapper.Credentials
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "request body must be JSON credentials")
		return
	}
	if _, err := api.service.Signup(c.Request.Context(), payload.Username, payload.Password); err != nil {
		respondUserServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MessageResponse{Message: signupMessage})
}

// Post /token
// Exchange credentials for an access and refresh token pair
func (api *UserAPI) ObtainToken(c *gin.Context) {
	if api.service == nil {
		DefaultHandleFunc(c)
		return
	}
	var payload usermapper.Credentials
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "request body must be JSON credentials")
		return
	}
	pair, err := api.service.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		respondUserServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, usermapper.FromTokenPair(pair))
}

// Post /token/refresh
// Exchange a refresh token for a new access token
func (api *UserAPI) RefreshToken(c *gin.Context) {
	if api.service == nil {
		DefaultHandleFunc(c)
		return
	}
	var payload usermapper.RefreshRequest
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Refresh == "" {
		apierrors.DefaultResponder.Unauthorized(c)
		return
	}
	access, err := api.service.Refresh(c.Request.Context(), payload.Refresh)
	if err != nil {
		respondUserServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, usermapper.AccessToken{Access: access})
}

// Get /ping
func (api *UserAPI) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: pingMessage})
}
