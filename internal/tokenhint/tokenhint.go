// Package tokenhint extrae hints de identidad de un JWT SIN verificar la
// firma. Los valores son best-effort y sirven únicamente para display y
// logging; jamás deben usarse para decisiones de autorización — la identidad
// real la deriva el identity provider del bearer token que le reenviamos.
package tokenhint

import (
	"strings"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Hints son los campos de display extraídos del payload del token.
type Hints struct {
	Subject     string
	Username    string
	DisplayName string
}

// FromBearer decodifica el segmento de claims de un JWT sin validar nada.
// Si el token no parsea, retorna Hints vacíos (nunca error: es sólo un hint).
func FromBearer(token string) Hints {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return Hints{}
	}

	parser := jwtv5.NewParser()
	claims := jwtv5.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Hints{}
	}

	h := Hints{}
	if v, ok := claims["sub"].(string); ok {
		h.Subject = v
	}
	if v, ok := claims["username"].(string); ok {
		h.Username = v
	} else if h.Subject != "" && !strings.Contains(h.Subject, "-") {
		// sub sólo sirve como username cuando no es un UUID
		h.Username = h.Subject
	}
	if v, ok := claims["name"].(string); ok {
		h.DisplayName = v
	}
	return h
}
