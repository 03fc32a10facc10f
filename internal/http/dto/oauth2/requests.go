// Package oauth2 contiene los DTOs de la superficie OAuth2 del gateway.
package oauth2

// LoginRequest es un password grant mediado por el gateway.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Scope    string `json:"scope,omitempty"`
}

// RefreshRequest renueva un access token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
	Scope        string `json:"scope,omitempty"`
}

// RevokeRequest revoca un token (RFC 7009).
type RevokeRequest struct {
	Token         string `json:"token"`
	TokenTypeHint string `json:"tokenTypeHint,omitempty"`
}

// IntrospectRequest consulta el estado de un token (RFC 7662).
type IntrospectRequest struct {
	Token string `json:"token"`
}
