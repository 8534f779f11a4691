package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/brew-ha-ha/internal/domains/catalog/domain"
)

var (
	// ErrInvalidInput signals the request violated a product invariant.
	ErrInvalidInput = errors.New("invalid product input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrNameTooLong) ||
		errors.Is(err, domain.ErrDescriptionTooLong) ||
		errors.Is(err, domain.ErrTemperatureTooLong) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrNegativeQuantity) ||
		errors.Is(err, domain.ErrNegativeCaffeineAmount) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
