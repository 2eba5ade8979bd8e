package tournament

import (
	"context"
	"fmt"

	"github.com/trentd187/domino-tournament/internal/live"
	"github.com/trentd187/domino-tournament/internal/models"
	"github.com/trentd187/domino-tournament/internal/store"
)

// ScoreInput is what a scorer enters for one position.
type ScoreInput struct {
	Base    int `json:"base"`
	Penalty int `json:"penalty"`
}

// FinalPoints applies a penalty to base points: max(0, base - max(0, penalty)).
func FinalPoints(base, penalty int) int {
	if penalty < 0 {
		penalty = 0
	}
	if final := base - penalty; final > 0 {
		return final
	}
	return 0
}

// SaveTablePoints records the aggregate totals of a table. The side with strictly more
// points wins; equal totals are a draw. A second save replaces the first. The table is
// marked finished and the ranking recomputed.
func (s *Service) SaveTablePoints(ctx context.Context, round, table, side1, side2 int) (models.TableResult, error) {
	if err := s.checkRound(round); err != nil {
		return models.TableResult{}, s.fail(ctx, "save_table_points", err)
	}
	if err := checkTable(table); err != nil {
		return models.TableResult{}, s.fail(ctx, "save_table_points", err)
	}
	if side1 < 0 || side2 < 0 {
		return models.TableResult{}, s.fail(ctx, "save_table_points", validationf("points must not be negative"))
	}

	res := models.TableResult{
		Round:       round,
		TableNo:     table,
		PointsSide1: side1,
		PointsSide2: side2,
		Winner:      models.WinnerFor(side1, side2),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveTableResult(ctx, res); err != nil {
		return models.TableResult{}, s.fail(ctx, "save_table_points", err)
	}
	s.opts.Metrics.ScoreSaved("totals")
	s.opts.Hub.Publish(live.Event{Type: live.TableFinished, Round: round, Table: table})

	if _, err := s.recomputeLocked(ctx); err != nil {
		return res, s.fail(ctx, "save_table_points", err)
	}
	return res, nil
}

// SavePlayerScores records detailed results for all four positions of a table, replacing
// any earlier detailed rows for it. winner must be AC or BD. The table is marked finished and
// the ranking recomputed.
func (s *Service) SavePlayerScores(ctx context.Context, round, table int, scores map[models.Position]ScoreInput, winner models.Partnership) ([]models.PlayerRoundScore, error) {
	if err := validateScores(scores, winner); err != nil {
		return nil, s.fail(ctx, "save_player_scores", err)
	}
	if err := s.checkRound(round); err != nil {
		return nil, s.fail(ctx, "save_player_scores", err)
	}
	if err := checkTable(table); err != nil {
		return nil, s.fail(ctx, "save_player_scores", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seats, err := s.store.TableSeats(ctx, round, table)
	if err != nil {
		return nil, s.fail(ctx, "save_player_scores", err)
	}
	if len(seats) != len(models.Positions) {
		return nil, s.fail(ctx, "save_player_scores",
			conflictf("%s has %d seated players", describeTable(round, table), len(seats)))
	}

	rows := make([]models.PlayerRoundScore, 0, len(seats))
	for _, seat := range seats {
		in := scores[seat.Position]
		rows = append(rows, models.PlayerRoundScore{
			Round:              round,
			TableNo:            table,
			PlayerID:           seat.PlayerID,
			Position:           seat.Position,
			BasePoints:         in.Base,
			PenaltyPoints:      in.Penalty,
			FinalPoints:        FinalPoints(in.Base, in.Penalty),
			WinningPartnership: winner,
		})
	}

	if err := s.store.ReplacePlayerScores(ctx, round, table, rows); err != nil {
		return nil, s.fail(ctx, "save_player_scores", err)
	}
	s.opts.Metrics.ScoreSaved("players")
	s.opts.Hub.Publish(live.Event{Type: live.TableFinished, Round: round, Table: table})

	if _, err := s.recomputeLocked(ctx); err != nil {
		return rows, s.fail(ctx, "save_player_scores", err)
	}
	return rows, nil
}

func validateScores(scores map[models.Position]ScoreInput, winner models.Partnership) error {
	if !winner.Valid() {
		return validationf("winning partnership must be %q or %q", models.PartnershipAC, models.PartnershipBD)
	}
	for pos := range scores {
		if !pos.Valid() {
			return validationf("unknown position %q", pos)
		}
	}
	for _, pos := range models.Positions {
		in, ok := scores[pos]
		if !ok {
			return validationf("missing score for position %s", pos)
		}
		if in.Base < 0 {
			return validationf("base points for position %s must not be negative", pos)
		}
		if in.Penalty < 0 {
			return validationf("penalty points for position %s must not be negative", pos)
		}
	}
	return nil
}

// TableResult returns the aggregate result of a table.
func (s *Service) TableResult(ctx context.Context, round, table int) (models.TableResult, error) {
	if err := s.checkRound(round); err != nil {
		return models.TableResult{}, s.fail(ctx, "table_result", err)
	}
	res, err := s.store.TableResult(ctx, round, table)
	if err != nil {
		return models.TableResult{}, s.fail(ctx, "table_result", err)
	}
	return res, nil
}

// TablePlayerScores returns the detailed rows of a table ordered A to D; empty when the table
// was scored by totals or not at all.
func (s *Service) TablePlayerScores(ctx context.Context, round, table int) ([]models.PlayerRoundScore, error) {
	if err := s.checkRound(round); err != nil {
		return nil, s.fail(ctx, "table_player_scores", err)
	}
	rows, err := s.store.PlayerScores(ctx, round, table)
	if err != nil {
		return nil, s.fail(ctx, "table_player_scores", err)
	}
	return rows, nil
}

// Ranking returns the standings as of the last recompute.
func (s *Service) Ranking(ctx context.Context) ([]store.RankingRow, error) {
	rows, err := s.store.Ranking(ctx)
	if err != nil {
		return nil, s.fail(ctx, "ranking", err)
	}
	return rows, nil
}

// describeTable renders "round R table T" for messages.
func describeTable(round, table int) string {
	return fmt.Sprintf("round %d table %d", round, table)
}
