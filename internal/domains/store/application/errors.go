package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/brew-ha-ha/internal/domains/store/domain"
)

var (
	// ErrInvalidInput signals the request violated an order invariant or a stock rule.
	ErrInvalidInput = errors.New("invalid order input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var fields domain.FieldErrors
	var outOfStock *domain.OutOfStockError
	if errors.As(err, &fields) || errors.As(err, &outOfStock) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
