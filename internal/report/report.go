// Package report renders the printable tournament workbooks: the round assignment sheet,
// one score sheet per table and the ranking. Layout beyond rows and columns (page size,
// PDF conversion) is left to whoever prints them.
package report

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/trentd187/domino-tournament/internal/models"
	"github.com/trentd187/domino-tournament/internal/store"
	"github.com/trentd187/domino-tournament/internal/tournament"
)

// Exporter renders workbooks from the live tournament state.
type Exporter struct {
	svc   *tournament.Service
	title string
}

// NewExporter returns an Exporter that heads every sheet with title.
func NewExporter(svc *tournament.Service, title string) *Exporter {
	return &Exporter{svc: svc, title: title}
}

// WriteAssignment writes the "ID | Table" sheet of round to w.
func (e *Exporter) WriteAssignment(ctx context.Context, w io.Writer, round int) error {
	entries, err := e.svc.RoundSeatList(ctx, round)
	if err != nil {
		return err
	}
	f, err := AssignmentWorkbook(e.title, round, entries)
	if err != nil {
		return err
	}
	return writeAndClose(f, w)
}

// WriteTableSheets writes one score sheet per table of round to w.
func (e *Exporter) WriteTableSheets(ctx context.Context, w io.Writer, round int) error {
	sheets, err := e.svc.RoundSheets(ctx, round)
	if err != nil {
		return err
	}
	f, err := TableSheetsWorkbook(e.title, round, sheets)
	if err != nil {
		return err
	}
	return writeAndClose(f, w)
}

// WriteRanking writes the current standings to w.
func (e *Exporter) WriteRanking(ctx context.Context, w io.Writer) error {
	rows, err := e.svc.Ranking(ctx)
	if err != nil {
		return err
	}
	f, err := RankingWorkbook(e.title, rows)
	if err != nil {
		return err
	}
	return writeAndClose(f, w)
}

// Bytes renders f into memory and closes it.
func Bytes(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeAndClose(f, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAndClose(f *excelize.File, w io.Writer) error {
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// AssignmentWorkbook lists every seated player of round with their table, by player id.
func AssignmentWorkbook(title string, round int, entries []tournament.SeatListEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := fmt.Sprintf("Round %d", round)
	if err := renameFirstSheet(f, sheet); err != nil {
		return nil, err
	}

	w := newSheetWriter(f, sheet)
	w.row(fmt.Sprintf("%s - Round %d", title, round))
	w.row("ID", "Player", "Table")
	for _, e := range entries {
		w.row(e.PlayerID, e.Name+" "+e.Surname, e.Table)
	}
	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	if err := w.widths(8, 32, 8); err != nil {
		return nil, err
	}
	return f, nil
}

// TableSheetsWorkbook renders one sheet per table with the players at each position, their
// standing before printing (G, P, E, R) and whatever result was recorded.
func TableSheetsWorkbook(title string, round int, sheets []tournament.TableSheet) (*excelize.File, error) {
	f := excelize.NewFile()
	if len(sheets) == 0 {
		if err := renameFirstSheet(f, fmt.Sprintf("Round %d", round)); err != nil {
			return nil, err
		}
		return f, nil
	}

	for i, ts := range sheets {
		name := fmt.Sprintf("Table %d", ts.Table)
		if i == 0 {
			if err := renameFirstSheet(f, name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add sheet %q: %w", name, err)
		}

		w := newSheetWriter(f, name)
		w.row(fmt.Sprintf("%s - Round %d - Table %d", title, round, ts.Table))
		w.row("Status", string(ts.Status))
		w.row("Pos", "ID", "Player", "National ID", "G", "P", "E", "R")
		for _, seat := range ts.Seats {
			w.row(string(seat.Position), seat.PlayerID, seat.Name+" "+seat.Surname, seat.NationalID,
				seat.GamesWon, seat.Points, seat.Effectiveness, seat.Rank)
		}

		switch {
		case len(ts.Scores) > 0:
			w.row()
			w.row("Pos", "Base", "Penalty", "Final", "Won")
			for _, sc := range ts.Scores {
				w.row(string(sc.Position), sc.BasePoints, sc.PenaltyPoints, sc.FinalPoints, yesNo(sc.Won()))
			}
		case ts.Result != nil:
			w.row()
			w.row("Side", "Points")
			w.row(string(models.PartnershipAC), ts.Result.PointsSide1)
			w.row(string(models.PartnershipBD), ts.Result.PointsSide2)
			w.row("Winner", string(ts.Result.Winner))
		}
		if w.err != nil {
			f.Close()
			return nil, w.err
		}
		if err := w.widths(6, 8, 32, 14, 6, 8, 8, 6); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// RankingWorkbook renders the standings in rank order.
func RankingWorkbook(title string, rows []store.RankingRow) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Ranking"
	if err := renameFirstSheet(f, sheet); err != nil {
		return nil, err
	}

	w := newSheetWriter(f, sheet)
	w.row(title + " - Ranking")
	w.row("R", "ID", "Player", "G", "P", "E")
	for _, r := range rows {
		w.row(r.Rank, r.PlayerID, r.Name+" "+r.Surname, r.GamesWon, r.Points, r.Effectiveness)
	}
	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	if err := w.widths(6, 8, 32, 6, 8, 8); err != nil {
		return nil, err
	}
	return f, nil
}

func renameFirstSheet(f *excelize.File, name string) error {
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		f.Close()
		return fmt.Errorf("failed to name sheet %q: %w", name, err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// sheetWriter appends rows to one sheet and remembers the first error.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
	err   error
}

func newSheetWriter(f *excelize.File, sheet string) *sheetWriter {
	return &sheetWriter{f: f, sheet: sheet, next: 1}
}

func (w *sheetWriter) row(values ...any) {
	if w.err != nil {
		return
	}
	if len(values) > 0 {
		cell, err := excelize.CoordinatesToCellName(1, w.next)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetSheetRow(w.sheet, cell, &values); err != nil {
			w.err = fmt.Errorf("failed to write row %d of %q: %w", w.next, w.sheet, err)
			return
		}
	}
	w.next++
}

// widths sets column widths from A onwards.
func (w *sheetWriter) widths(widths ...float64) error {
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err == nil {
			err = w.f.SetColWidth(w.sheet, col, col, width)
		}
		if err != nil {
			w.f.Close()
			return fmt.Errorf("failed to size column %d of %q: %w", i+1, w.sheet, err)
		}
	}
	return nil
}
