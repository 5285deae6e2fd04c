package domain

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound       = errors.New("item not found")
	ErrLocationNotFound   = errors.New("location not found on item")
	ErrInvalidDelta       = errors.New("stock delta must be non-zero")
	ErrPersistence        = errors.New("persistence failure")
	ErrLogWrite           = errors.New("log write failure")
	ErrTimeout            = errors.New("store call timed out")
	ErrImportFormat       = errors.New("import format error")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrDuplicateRequest   = errors.New("duplicate request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSetting     = errors.New("invalid setting value")
	ErrInvalidRecord      = errors.New("invalid record")
)

func ErrInvalidItem(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRecord, reason)
}
