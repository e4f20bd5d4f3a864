package postgres

import (
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/tournament"
)

type tournamentTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	Name      string     `db:"name"`
	Overs     int        `db:"overs"`
	Document  []byte     `db:"document"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type tournamentInsertModel struct {
	PublicID string `db:"public_id"`
	Name     string `db:"name"`
	Overs    int    `db:"overs"`
	Document string `db:"document"`
}

// tournamentDocument is the JSONB payload. Scalar columns stay out of it so
// they can be queried without unpacking the document.
type tournamentDocument struct {
	Teams            []tournament.Team   `json:"teams"`
	Players          []tournament.Player `json:"players"`
	Matches          []match.Match       `json:"matches"`
	CompletedMatches []match.Match       `json:"completedMatches"`
}

func encodeDocument(t tournament.Tournament) (string, error) {
	doc := tournamentDocument{
		Teams:            t.Teams,
		Players:          t.Players,
		Matches:          t.Matches,
		CompletedMatches: t.CompletedMatches,
	}
	raw, err := sonic.Marshal(doc)
	if err != nil {
		return "", crerr.Wrapf(err, "encode tournament %s document", t.ID)
	}
	return string(raw), nil
}

func (m tournamentTableModel) toDomain() (tournament.Tournament, error) {
	var doc tournamentDocument
	if len(m.Document) > 0 {
		if err := sonic.Unmarshal(m.Document, &doc); err != nil {
			return tournament.Tournament{}, crerr.Wrapf(err, "decode tournament %s document", m.PublicID)
		}
	}

	return tournament.Tournament{
		ID:               m.PublicID,
		Name:             m.Name,
		Overs:            m.Overs,
		Teams:            doc.Teams,
		Players:          doc.Players,
		Matches:          doc.Matches,
		CompletedMatches: doc.CompletedMatches,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}, nil
}
