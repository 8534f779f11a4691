package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/brew-ha-ha/internal/domains/users/domain"
	"github.com/Apurer/brew-ha-ha/internal/domains/users/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid user input")
	// ErrAuthentication wraps authentication failures.
	ErrAuthentication = errors.New("authentication failed")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyUsername) ||
		errors.Is(err, domain.ErrEmptyPassword) ||
		errors.Is(err, domain.ErrInvalidUsername) ||
		errors.Is(err, domain.ErrInvalidPassword) ||
		errors.Is(err, domain.ErrUsernameTooLong) ||
		errors.Is(err, domain.ErrPasswordTooLong) ||
		errors.Is(err, ports.ErrDuplicateUsername) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, ports.ErrInvalidCredentials) ||
		errors.Is(err, ports.ErrInvalidToken) {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	return err
}
