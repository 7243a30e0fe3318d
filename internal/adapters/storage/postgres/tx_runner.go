package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pethouse/internal/domain/pets"
	"pethouse/internal/domain/visits"
)

var (
	_ pets.TxRunner   = (*TxRunner)(nil)
	_ visits.TxRunner = (*TxRunner)(nil)
)

// TxRunner runs callbacks inside one Postgres transaction with repositories bound to it.
type TxRunner struct {
	db *sqlx.DB
}

func NewTxRunner(db *sqlx.DB) *TxRunner {
	return &TxRunner{db: db}
}

func (r *TxRunner) RunPets(ctx context.Context, fn func(repo pets.Repository) error) error {
	return r.run(ctx, func(tx *sqlx.Tx) error {
		return fn(NewPetsRepo(tx))
	})
}

func (r *TxRunner) RunVisits(ctx context.Context, fn func(petRepo pets.Repository, repo visits.Repository) error) error {
	return r.run(ctx, func(tx *sqlx.Tx) error {
		return fn(NewPetsRepo(tx), NewVisitsRepo(tx))
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
