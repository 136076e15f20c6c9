package postgres

import (
	"context"
	"database/sql"

	"campusride/internal/repository"
)

// TxRunner runs multi-entity writes inside a single database
// transaction using transaction-scoped repositories.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a new TxRunner.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// InTx begins a transaction, invokes fn with transaction-scoped
// repositories and commits. Any error from fn rolls the whole unit
// back, so partial multi-entity writes are never visible.
func (r *TxRunner) InTx(ctx context.Context, fn func(repository.Repos) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	repos := repository.Repos{
		Sessions: NewSessionRepositoryWithTx(tx),
		Rooms:    NewChatRoomRepositoryWithTx(tx),
		Messages: NewMessageRepositoryWithTx(tx),
		Payments: NewPaymentRepositoryWithTx(tx),
	}

	if err = fn(repos); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// Ensure TxRunner implements repository.TxRunner.
var _ repository.TxRunner = (*TxRunner)(nil)
