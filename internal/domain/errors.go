// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist upstream.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates an input or configuration value was rejected.
var ErrValidation = errors.New("validation failed")
