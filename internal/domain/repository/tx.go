package repository

import (
	"context"
	"errors"
)

// ErrDuplicate is returned when an insert hits a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// TxManager runs fn in a store transaction. Repositories called with the
// ctx passed to fn join that transaction. Nested calls use savepoints.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
