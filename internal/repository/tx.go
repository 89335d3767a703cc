package repository

import (
	"context"
	"errors"

	"coach_backend/internal/util"

	"gorm.io/gorm"
)

// TxRunner is the transaction boundary shared by multi-row writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(fn)
}

// translate maps gorm errors onto the service taxonomy. Errors that are
// already classified pass through.
func translate(err error, notFound *util.AppError) error {
	if err == nil {
		return nil
	}
	var appErr *util.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil {
		return notFound
	}
	return util.NewPersistence(err)
}
