package tournament

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/trentd187/domino-tournament/internal/models"
	"github.com/trentd187/domino-tournament/internal/store"
)

// sheetWorkers bounds how many table sheets are loaded at once.
const sheetWorkers = 4

// SheetSeat is one position of a printed table sheet: who sits there and their standing.
type SheetSeat struct {
	Position      models.Position `json:"position"`
	PlayerID      int             `json:"player_id"`
	Name          string          `json:"name"`
	Surname       string          `json:"surname"`
	NationalID    string          `json:"national_id"`
	GamesWon      int             `json:"g"`
	Points        int             `json:"p"`
	Effectiveness int             `json:"e"`
	Rank          int             `json:"r"`
}

// TableSheet is everything a printed score sheet for one table needs.
type TableSheet struct {
	Round  int               `json:"round"`
	Table  int               `json:"table"`
	Status models.TableState `json:"status"`
	Seats  [4]SheetSeat      `json:"seats"`
	// Result is set when the table was scored by totals.
	Result *models.TableResult `json:"result,omitempty"`
	// Scores holds the detailed rows, A to D, when the table was scored per player.
	Scores []models.PlayerRoundScore `json:"scores"`
}

// TableSheet builds the sheet of one table.
func (s *Service) TableSheet(ctx context.Context, round, table int) (TableSheet, error) {
	if err := s.checkRound(round); err != nil {
		return TableSheet{}, s.fail(ctx, "table_sheet", err)
	}
	if err := checkTable(table); err != nil {
		return TableSheet{}, s.fail(ctx, "table_sheet", err)
	}
	sheet, err := s.tableSheet(ctx, round, table)
	if err != nil {
		return TableSheet{}, s.fail(ctx, "table_sheet", err)
	}
	return sheet, nil
}

func (s *Service) tableSheet(ctx context.Context, round, table int) (TableSheet, error) {
	seats, err := s.store.TableSeats(ctx, round, table)
	if err != nil {
		return TableSheet{}, err
	}
	status, err := s.store.TableStatus(ctx, round, table)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return TableSheet{}, err
	}
	if status == "" {
		status = models.TableInProgress
	}

	ids := make([]int, 0, len(seats))
	for _, seat := range seats {
		ids = append(ids, seat.PlayerID)
	}
	stats, err := s.store.StatsByPlayer(ctx, ids)
	if err != nil {
		return TableSheet{}, err
	}

	sheet := TableSheet{Round: round, Table: table, Status: status}
	for _, seat := range seats {
		st := stats[seat.PlayerID]
		line := SheetSeat{
			Position:      seat.Position,
			PlayerID:      seat.PlayerID,
			GamesWon:      st.GamesWon,
			Points:        st.Points,
			Effectiveness: st.Effectiveness,
			Rank:          st.Rank,
		}
		if seat.Player != nil {
			line.Name = seat.Player.Name
			line.Surname = seat.Player.Surname
			line.NationalID = seat.Player.NationalID
		}
		sheet.Seats[positionIndex(seat.Position)] = line
	}

	res, err := s.store.TableResult(ctx, round, table)
	switch {
	case err == nil:
		sheet.Result = &res
	case !errors.Is(err, store.ErrNotFound):
		return TableSheet{}, err
	}

	sheet.Scores, err = s.store.PlayerScores(ctx, round, table)
	if err != nil {
		return TableSheet{}, err
	}
	return sheet, nil
}

// RoundSheets builds the sheet of every table of round, ordered by table number.
func (s *Service) RoundSheets(ctx context.Context, round int) ([]TableSheet, error) {
	view, err := s.RoundAssignment(ctx, round)
	if err != nil {
		return nil, err
	}

	sheets := make([]TableSheet, len(view.Tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sheetWorkers)
	for i, t := range view.Tables {
		g.Go(func() error {
			sheet, err := s.tableSheet(gctx, round, t.Number)
			if err != nil {
				return err
			}
			sheets[i] = sheet
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, "round_sheets", err)
	}
	return sheets, nil
}
