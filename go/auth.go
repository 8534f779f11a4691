package brewserver

import (
	"strings"

	"github.com/gin-gonic/gin"

	userports "github.com/Apurer/brew-ha-ha/internal/domains/users/ports"
	apierrors "github.com/Apurer/brew-ha-ha/internal/shared/errors"
)

// UsernameKey is the gin context key holding the authenticated username.
const UsernameKey = "brewserver.username"

// BearerAuth admits requests carrying a valid access token in the Authorization header.
func BearerAuth(users userports.Service) gin.HandlerFunc {
	if users == nil {
		return denyAll
	}
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apierrors.DefaultResponder.Unauthorized(c)
			return
		}
		username, err := users.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondUserServiceError(c, err)
			return
		}
		c.Set(UsernameKey, username)
		c.Next()
	}
}

func denyAll(c *gin.Context) {
	apierrors.DefaultResponder.Unauthorized(c)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
