package db

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned by Get for a missing key.
	ErrKeyNotFound = errors.New("db: key not found")
	// ErrNoAddrs is returned when a store is configured without addresses.
	ErrNoAddrs = errors.New("db: at least one address is required")
)

// Operation names used in Error.
const (
	OpPing   = "PING"
	OpGet    = "GET"
	OpPut    = "SET"
	OpDelete = "DEL"
)

// Error records the failed command and key alongside the cause.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("db: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("db: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
