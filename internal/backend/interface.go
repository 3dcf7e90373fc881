// Package backend builds the record store the API runs on.
package backend

import (
	"context"

	"fintrack/internal/records"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// ReadyFunc reports whether the backend can serve requests.
type ReadyFunc func(ctx context.Context) error

// BackendResult is a ready-to-use store plus its lifecycle hooks. Cleanup and
// Ready are never nil.
type BackendResult struct {
	Store   records.Store
	Ready   ReadyFunc
	Cleanup CleanupFunc
	// Publishing reports whether writes announce changes over AMQP.
	Publishing bool
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string

	// AMQP is optional. Without a URL, writes are not announced.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
