package postgres

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/tournament"
	qb "github.com/riskibarqy/fantasy-cricket/internal/platform/querybuilder"
)

const tournamentsTable = "tournaments"

type TournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

func (r *TournamentRepository) ListTournaments(ctx context.Context) ([]tournament.Tournament, error) {
	query, args, err := qb.Select("*").From(tournamentsTable).
		Where(qb.IsNull("deleted_at")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build select tournaments query")
	}

	var rows []tournamentTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "select tournaments")
	}

	out := make([]tournament.Tournament, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *TournamentRepository) GetTournament(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	query, args, err := selectTournamentQuery(tournamentID, false)
	if err != nil {
		return tournament.Tournament{}, false, err
	}

	var row tournamentTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, crerr.Wrapf(err, "get tournament %s", tournamentID)
	}

	item, err := row.toDomain()
	if err != nil {
		return tournament.Tournament{}, false, err
	}
	return item, true, nil
}

// UpdateTournament locks the row, applies the patch to the stored document and
// writes it back in one transaction.
func (r *TournamentRepository) UpdateTournament(ctx context.Context, tournamentID string, patch tournament.Patch) (tournament.Tournament, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return tournament.Tournament{}, crerr.Wrap(err, "begin tx update tournament")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := selectTournamentQuery(tournamentID, true)
	if err != nil {
		return tournament.Tournament{}, err
	}
	var row tournamentTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, crerr.Newf("tournament not found: %s", tournamentID)
		}
		return tournament.Tournament{}, crerr.Wrapf(err, "lock tournament %s", tournamentID)
	}

	current, err := row.toDomain()
	if err != nil {
		return tournament.Tournament{}, err
	}
	next := patch.Apply(current)

	doc, err := encodeDocument(next)
	if err != nil {
		return tournament.Tournament{}, err
	}
	updateQuery, updateArgs, err := qb.Update(tournamentsTable).
		Set("name", next.Name).
		Set("document", doc).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", row.ID)).
		Suffix("RETURNING updated_at").
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, crerr.Wrap(err, "build update tournament query")
	}
	if err := tx.QueryRowxContext(ctx, updateQuery, updateArgs...).Scan(&next.UpdatedAt); err != nil {
		return tournament.Tournament{}, crerr.Wrapf(err, "update tournament %s", tournamentID)
	}

	if err := tx.Commit(); err != nil {
		return tournament.Tournament{}, crerr.Wrap(err, "commit update tournament tx")
	}
	return next, nil
}

func selectTournamentQuery(tournamentID string, forUpdate bool) (string, []any, error) {
	builder := qb.Select("*").From(tournamentsTable).
		Where(
			qb.Eq("public_id", tournamentID),
			qb.IsNull("deleted_at"),
		)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return "", nil, crerr.Wrap(err, "build get tournament query")
	}
	return query, args, nil
}
