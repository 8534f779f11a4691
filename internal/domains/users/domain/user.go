package domain

import (
	"errors"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	MaxUsernameLength = 150
	MaxPasswordLength = 128
)

var (
	ErrEmptyUsername       = errors.New("username is required")
	ErrEmptyPassword       = errors.New("password is required")
	ErrInvalidUsername     = errors.New("username can only contain letters and numbers")
	ErrInvalidPassword     = errors.New("password can only contain letters and numbers")
	ErrUsernameTooLong     = errors.New("username must be at most 150 characters")
	ErrPasswordTooLong     = errors.New("password must be at most 128 characters")
	ErrMissingPasswordHash = errors.New("password hash is required")
)

var alphanumeric = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// hashCost is lowered by tests.
var hashCost = bcrypt.DefaultCost

// User is a registered account. Only the bcrypt hash of the password is kept.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// NewUser validates the credentials and hashes the password.
func NewUser(username, password string) (*User, error) {
	user := &User{}
	if err := user.SetUsername(username); err != nil {
		return nil, err
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	return user, nil
}

// SetUsername validates the username as given; surrounding spaces are rejected.
func (u *User) SetUsername(username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	u.Username = username
	return nil
}

// SetPassword validates the password and replaces the stored hash.
func (u *User) SetPassword(password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares password with the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u == nil || u.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Validate re-applies invariants for persistence.
func (u *User) Validate() error {
	if err := ValidateUsername(u.Username); err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return ErrMissingPasswordHash
	}
	return nil
}

func ValidateUsername(username string) error {
	switch {
	case username == "":
		return ErrEmptyUsername
	case len(username) > MaxUsernameLength:
		return ErrUsernameTooLong
	case !alphanumeric.MatchString(username):
		return ErrInvalidUsername
	}
	return nil
}

func ValidatePassword(password string) error {
	switch {
	case password == "":
		return ErrEmptyPassword
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	case !alphanumeric.MatchString(password):
		return ErrInvalidPassword
	}
	return nil
}
