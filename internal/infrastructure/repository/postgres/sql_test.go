package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/tournament"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected true for sql.ErrNoRows")
	}
	if !isNotFound(fmt.Errorf("get tournament: %w", sql.ErrNoRows)) {
		t.Fatalf("expected true for wrapped sql.ErrNoRows")
	}
	if isNotFound(fmt.Errorf("pq: relation tournaments does not exist")) {
		t.Fatalf("expected false for unrelated error")
	}
}

func TestSelectTournamentQuery(t *testing.T) {
	query, args, err := selectTournamentQuery("cup", true)
	if err != nil {
		t.Fatalf("selectTournamentQuery error: %v", err)
	}
	want := "SELECT * FROM tournaments WHERE public_id = $1 AND deleted_at IS NULL FOR UPDATE"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 1 || args[0] != "cup" {
		t.Fatalf("unexpected args: %+v", args)
	}

	query, _, err = selectTournamentQuery("cup", false)
	if err != nil {
		t.Fatalf("selectTournamentQuery error: %v", err)
	}
	if strings.Contains(query, "FOR UPDATE") {
		t.Fatalf("expected no lock clause on plain reads: %s", query)
	}
}

func TestTournamentDocument(t *testing.T) {
	created := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	item := tournament.Tournament{
		ID:    "cup",
		Name:  "Cup",
		Overs: 20,
		Teams: []tournament.Team{{ID: "a", Name: "A", PlayerIDs: []string{"a-1"}}},
		Players: []tournament.Player{
			{ID: "a-1", Name: "Player", TeamID: "a", Role: tournament.RoleBatter},
		},
		Matches: []match.Match{{ID: "m1", Status: match.StatusScheduled, Overs: 20}},
	}

	doc, err := encodeDocument(item)
	if err != nil {
		t.Fatalf("encodeDocument error: %v", err)
	}
	if strings.Contains(doc, `"name":"Cup"`) {
		t.Fatalf("expected scalar columns to stay out of the document: %s", doc)
	}

	row := tournamentTableModel{
		PublicID:  "cup",
		Name:      "Cup",
		Overs:     20,
		Document:  []byte(doc),
		CreatedAt: created,
		UpdatedAt: created,
	}
	got, err := row.toDomain()
	if err != nil {
		t.Fatalf("toDomain error: %v", err)
	}
	if got.ID != "cup" || got.Overs != 20 || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected scalar fields: %+v", got)
	}
	if len(got.Teams) != 1 || len(got.Players) != 1 || len(got.Matches) != 1 || got.Matches[0].ID != "m1" {
		t.Fatalf("unexpected document fields: %+v", got)
	}
}

func TestTournamentDocument_Corrupt(t *testing.T) {
	row := tournamentTableModel{PublicID: "cup", Document: []byte("{not json")}
	if _, err := row.toDomain(); err == nil {
		t.Fatalf("expected decode error")
	}
}
