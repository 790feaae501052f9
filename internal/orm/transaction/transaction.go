// Package transaction runs units of work inside a database transaction
package transaction

import (
	"context"
	"database/sql"
	"fmt"
)

// Manager manages database transactions
type Manager struct {
	db *sql.DB
}

// NewManager creates a new transaction manager
func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

// WithTransaction executes fn within a transaction. It commits when fn
// succeeds and rolls back when fn fails or panics.
func (m *Manager) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-throw panic after rollback
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
