package storage

import "github.com/pkg/errors"

var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrAlreadyExists  = errors.New("entity already exists")
	ErrConflict       = errors.New("entity changed concurrently")
)
