package postgres

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/memory"
	qb "github.com/riskibarqy/fantasy-cricket/internal/platform/querybuilder"
)

// BootstrapSeed inserts the seed tournaments when the table is empty.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM tournaments WHERE deleted_at IS NULL`); err != nil {
		return crerr.Wrap(err, "count tournaments for bootstrap seed")
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin seed tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, t := range memory.SeedTournaments(time.Now().UTC()) {
		doc, err := encodeDocument(t)
		if err != nil {
			return err
		}
		query, args, err := qb.InsertModel(tournamentsTable, tournamentInsertModel{
			PublicID: t.ID,
			Name:     t.Name,
			Overs:    t.Overs,
			Document: doc,
		}, "ON CONFLICT (public_id) DO NOTHING")
		if err != nil {
			return crerr.Wrapf(err, "build seed tournament %s query", t.ID)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return crerr.Wrapf(err, "seed tournament %s", t.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit seed tx")
	}
	return nil
}
