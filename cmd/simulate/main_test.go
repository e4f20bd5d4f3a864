package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/riskibarqy/fantasy-cricket/internal/config"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

func TestParseOptions(t *testing.T) {
	defaults := config.SimulationConfig{DefaultOvers: 20, Seed: 9}

	opts, err := parseOptions(nil, defaults)
	if err != nil {
		t.Fatalf("parseOptions error: %v", err)
	}
	if opts.overs != 20 || opts.seed != 9 || opts.team1 != "mum" || opts.team2 != "che" {
		t.Fatalf("unexpected defaults: %+v", opts)
	}

	if _, err := parseOptions([]string{"-overs", "51"}, defaults); err == nil {
		t.Fatalf("expected error for 51 overs")
	}

	opts, err = parseOptions([]string{"-seed", "0"}, defaults)
	if err != nil || opts.seed == 0 {
		t.Fatalf("expected a clock seed, got %d err=%v", opts.seed, err)
	}
}

func TestRun_SeededMatchIsReproducible(t *testing.T) {
	t.Setenv("SIM_SEED", "0")
	args := []string{"-overs", "2", "-seed", "1234", "-team1", "kol", "-team2", "ben"}

	var first, second bytes.Buffer
	if err := run(args, &first, logging.NewNop()); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if err := run(args, &second, logging.NewNop()); err != nil {
		t.Fatalf("run error: %v", err)
	}

	out := first.String()
	if !strings.Contains(out, "Kolkata Knights v Bengaluru Blazers") || !strings.Contains(out, "Result: ") {
		t.Fatalf("unexpected scorecard:\n%s", out)
	}
	if out != second.String() {
		t.Fatalf("expected identical scorecards for the same seed")
	}
}

func TestRun_WritesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scorecard.xlsx")

	var out bytes.Buffer
	if err := run([]string{"-overs", "1", "-seed", "7", "-xlsx", path}, &out, logging.NewNop()); err != nil {
		t.Fatalf("run error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected a workbook at %s, err=%v", path, err)
	}
}

func TestRun_UnknownTeam(t *testing.T) {
	if err := run([]string{"-team1", "xyz"}, &bytes.Buffer{}, logging.NewNop()); err == nil {
		t.Fatalf("expected error for unknown team")
	}
}
