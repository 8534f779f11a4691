package mapper

import userports "github.com/Apurer/brew-ha-ha/internal/domains/users/ports"

// Credentials is the body of POST /signup and POST /token.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /token/refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokenPair is returned by POST /token.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AccessToken is returned by POST /token/refresh.
type AccessToken struct {
	Access string `json:"access"`
}

func FromTokenPair(pair userports.TokenPair) TokenPair {
	return TokenPair{Access: pair.Access, Refresh: pair.Refresh}
}
