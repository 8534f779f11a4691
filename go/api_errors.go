package brewserver

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	catalogports "github.com/Apurer/brew-ha-ha/internal/domains/catalog/ports"
	storeapp "github.com/Apurer/brew-ha-ha/internal/domains/store/application"
	storedomain "github.com/Apurer/brew-ha-ha/internal/domains/store/domain"
	storeports "github.com/Apurer/brew-ha-ha/internal/domains/store/ports"
	userapp "github.com/Apurer/brew-ha-ha/internal/domains/users/application"
	apierrors "github.com/Apurer/brew-ha-ha/internal/shared/errors"
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

// respondBadRequest answers malformed requests without echoing decoder internals.
func respondBadRequest(c *gin.Context, detail string) {
	apierrors.DefaultResponder.BadRequest(c, detail)
}

func respondProductServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, catalogports.ErrNotFound) {
		apierrors.DefaultResponder.NotFound(c, "product")
		return
	}
	apierrors.RespondError(c, err)
}

func respondOrderServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var fields storedomain.FieldErrors
	var outOfStock *storedomain.OutOfStockError
	switch {
	case errors.As(err, &fields):
		respondProblem(c, apierrors.NewValidationProblem(fields))
	case errors.As(err, &outOfStock):
		respondProblem(c, apierrors.ErrValidation.WithDetail(outOfStock.Error()))
	case errors.Is(err, storeapp.ErrInvalidInput):
		respondProblem(c, apierrors.ErrValidation.WithDetail(causeDetail(err, storeapp.ErrInvalidInput)))
	case errors.Is(err, storeports.ErrProductNotFound):
		apierrors.DefaultResponder.NotFound(c, "product")
	case errors.Is(err, storeports.ErrNotFound):
		apierrors.DefaultResponder.NotFound(c, "order")
	case errors.Is(err, storeports.ErrIdempotencyConflict):
		respondProblem(c, apierrors.ErrConflict.WithDetail(storeports.ErrIdempotencyConflict.Error()))
	case errors.Is(err, storeports.ErrIdempotencyInProgress):
		respondProblem(c, apierrors.ErrConflict.WithDetail(storeports.ErrIdempotencyInProgress.Error()))
	default:
		apierrors.RespondError(c, err)
	}
}

func respondUserServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, userapp.ErrAuthentication):
		apierrors.DefaultResponder.Unauthorized(c)
	case errors.Is(err, userapp.ErrInvalidInput):
		respondProblem(c, apierrors.ErrValidation.WithDetail(causeDetail(err, userapp.ErrInvalidInput)))
	default:
		apierrors.RespondError(c, err)
	}
}

// causeDetail drops the application sentinel prefix so the detail names the rule that failed.
func causeDetail(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}
