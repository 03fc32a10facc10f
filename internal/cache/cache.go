// Package cache provee una abstracción mínima de cache in-process.
//
// El gateway es stateless por diseño: el único dato cacheado es el token de la
// sesión administrativa (un slot). La interfaz existe para poder inyectar un
// fake en tests sin tocar el backend real.
package cache

import "time"

// Cache define las operaciones mínimas de un cache clave/valor.
type Cache interface {
	// Get obtiene un valor. El segundo retorno indica si la key existe.
	Get(k string) ([]byte, bool)

	// Set guarda un valor con TTL. Si ttl es 0, no expira.
	Set(k string, v []byte, ttl time.Duration)

	// Delete elimina una key.
	Delete(k string)
}

// NoExpiration indica que la entrada no expira nunca.
const NoExpiration time.Duration = -1
