package service

import "context"

// TxManager runs fn in one database transaction. Repositories called with the
// ctx passed to fn join that transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
