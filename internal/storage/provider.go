// Package storage defines the local key-value persistence abstraction
// used for favorites and display settings.
package storage

import "github.com/starford/menza/internal/apperr"

// Provider is the interface for durable local key-value state. Values are
// opaque byte slices (JSON documents in practice). Get returns
// apperr.ErrNotFound for missing keys.
type Provider interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// ErrNotFound is re-exported so callers can match without importing apperr.
var ErrNotFound = apperr.ErrNotFound
