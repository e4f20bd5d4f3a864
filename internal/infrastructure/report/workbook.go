package report

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/standings"
)

const (
	SheetPointsTable = "Points Table"
	SheetMostRuns    = "Most Runs"
	SheetMostWickets = "Most Wickets"
	SheetEconomy     = "Best Economy"
	SheetStrikeRate  = "Strike Rate"
)

// StandingsWorkbook renders a points table and the leaderboards as xlsx.
func StandingsWorkbook(table []standings.PointsTableRow, boards standings.Leaderboards) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	rows := make([][]any, 0, len(table))
	for _, row := range table {
		rows = append(rows, []any{
			row.Position, row.TeamName, row.Played, row.Won, row.Lost,
			row.Tied, row.NoResult, row.Points, fmt.Sprintf("%.3f", row.NetRunRate),
		})
	}
	if err := writeSheet(f, SheetPointsTable,
		[]string{"Pos", "Team", "P", "W", "L", "T", "NR", "Pts", "NRR"}, rows); err != nil {
		return nil, err
	}

	batting := []string{"Player", "Team", "Inns", "Runs", "Balls", "4s", "6s", "SR"}
	bowling := []string{"Player", "Team", "Overs", "Runs", "Wkts", "Econ"}
	sheets := []struct {
		name    string
		headers []string
		stats   []standings.PerformanceStat
		row     func(standings.PerformanceStat) []any
	}{
		{SheetMostRuns, batting, boards.MostRuns, battingRow},
		{SheetMostWickets, bowling, boards.MostWickets, bowlingRow},
		{SheetEconomy, bowling, boards.BestEconomy, bowlingRow},
		{SheetStrikeRate, batting, boards.HighestStrikeRate, battingRow},
	}
	for _, sheet := range sheets {
		rows := make([][]any, 0, len(sheet.stats))
		for _, stat := range sheet.stats {
			rows = append(rows, sheet.row(stat))
		}
		if err := writeSheet(f, sheet.name, sheet.headers, rows); err != nil {
			return nil, err
		}
	}

	return finish(f)
}

// ScorecardWorkbook renders both innings of a match, one sheet per team.
func ScorecardWorkbook(m match.Match) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	summary := [][]any{
		{"Match", m.ID},
		{"Teams", fmt.Sprintf("%s v %s", m.Team1.Name, m.Team2.Name)},
		{"Venue", m.Venue},
		{"Overs", m.Overs},
		{"Result", m.Result},
	}
	if err := writeSheet(f, "Summary", []string{"Field", "Value"}, summary); err != nil {
		return nil, err
	}

	for _, team := range []match.TeamRef{m.Team1, m.Team2} {
		board, _ := m.ScoreFor(team.ID)
		rows := make([][]any, 0, len(board.Batting)+len(board.Bowling)+4)
		for _, card := range board.Batting {
			status := "not out"
			if card.IsOut {
				status = "out"
			}
			rows = append(rows, []any{card.PlayerID, status, card.Runs, card.Balls, card.Fours, card.Sixes})
		}
		rows = append(rows,
			[]any{"Extras", "", board.Extras},
			[]any{"Total", fmt.Sprintf("%d/%d", board.Score, board.Wickets), fmt.Sprintf("%.1f ov", board.Overs)},
			[]any{},
			[]any{"Bowler", "Overs", "Runs", "Wkts"},
		)
		for _, card := range board.Bowling {
			rows = append(rows, []any{card.PlayerID, card.Overs, card.RunsConceded, card.Wickets})
		}
		if err := writeSheet(f, sheetName(team), []string{"Batter", "Status", "R", "B", "4s", "6s"}, rows); err != nil {
			return nil, err
		}
	}

	return finish(f)
}

func battingRow(s standings.PerformanceStat) []any {
	return []any{s.PlayerName, s.TeamID, s.Innings, s.Runs, s.Balls, s.Fours, s.Sixes, fmt.Sprintf("%.2f", s.StrikeRate)}
}

func bowlingRow(s standings.PerformanceStat) []any {
	return []any{s.PlayerName, s.TeamID, fmt.Sprintf("%.1f", s.Overs), s.RunsConceded, s.Wickets, fmt.Sprintf("%.2f", s.Economy)}
}

// sheetName keeps within the 31 character sheet name limit.
func sheetName(team match.TeamRef) string {
	name := team.Name
	if name == "" {
		name = team.ID
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return crerr.Wrapf(err, "create sheet %q", sheet)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return crerr.Wrapf(err, "write %q header", sheet)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return crerr.Wrap(err, "resolve cell")
		}
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return crerr.Wrapf(err, "write %q row %d", sheet, i+1)
		}
	}
	return f.SetColWidth(sheet, "A", "B", 22)
}

func finish(f *excelize.File) ([]byte, error) {
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, crerr.Wrap(err, "drop default sheet")
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, crerr.Wrap(err, "write workbook")
	}
	return buf.Bytes(), nil
}
