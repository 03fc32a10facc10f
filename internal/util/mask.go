package util

import "strings"

// MaskToken reduce un token a una forma segura para logs: primeros 4 y últimos
// 4 caracteres. Nunca loguear tokens completos.
func MaskToken(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "…" + s[len(s)-4:]
}

// MaskSecret oculta un secreto dejando visible sólo la longitud aproximada.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "***"
	}
	return "***" + s[len(s)-2:]
}
