package auth

import "time"

// Credential is the stored form of a registered user. It is created once and
// never mutated.
type Credential struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the subject extracted from a validated token. It lives only for
// the duration of one request.
type Identity struct {
	Subject string
}

type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
