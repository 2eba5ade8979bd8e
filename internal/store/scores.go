package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trentd187/domino-tournament/internal/models"
)

// SaveTableResult upserts the aggregate result of a table and marks it finished.
func (s *Store) SaveTableResult(ctx context.Context, res models.TableResult) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := tableExists(tx, res.Round, res.TableNo)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("round %d table %d: %w", res.Round, res.TableNo, ErrNotFound)
		}

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "round"}, {Name: "table_no"}},
			DoUpdates: clause.AssignmentColumns([]string{"points_side1", "points_side2", "winner"}),
		}).Create(&res).Error
		if err != nil {
			return err
		}
		return upsertStatus(tx, res.Round, res.TableNo, models.TableFinished)
	})
	return translate(err, "save table result")
}

// TableResult returns the aggregate result of a table, or ErrNotFound.
func (s *Store) TableResult(ctx context.Context, round, table int) (models.TableResult, error) {
	var res models.TableResult
	err := s.db.WithContext(ctx).Where("round = ? AND table_no = ?", round, table).First(&res).Error
	return res, translate(err, fmt.Sprintf("result of round %d table %d", round, table))
}

// AllResults returns every aggregate result.
func (s *Store) AllResults(ctx context.Context) ([]models.TableResult, error) {
	var results []models.TableResult
	err := s.db.WithContext(ctx).Order("round, table_no").Find(&results).Error
	return results, translate(err, "load results")
}

// ReplacePlayerScores swaps the detailed rows of one table for rows and marks the table
// finished. Every row must belong to (round, table).
func (s *Store) ReplacePlayerScores(ctx context.Context, round, table int, rows []models.PlayerRoundScore) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := tableExists(tx, round, table)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("round %d table %d: %w", round, table, ErrNotFound)
		}

		err = tx.Where("round = ? AND table_no = ?", round, table).Delete(&models.PlayerRoundScore{}).Error
		if err != nil {
			return err
		}
		for i := range rows {
			if rows[i].Round != round || rows[i].TableNo != table {
				return fmt.Errorf("score row for round %d table %d saved under round %d table %d",
					rows[i].Round, rows[i].TableNo, round, table)
			}
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return upsertStatus(tx, round, table, models.TableFinished)
	})
	return translate(err, "save player scores")
}

// PlayerScores returns the detailed rows of one table ordered A to D.
func (s *Store) PlayerScores(ctx context.Context, round, table int) ([]models.PlayerRoundScore, error) {
	var rows []models.PlayerRoundScore
	err := s.db.WithContext(ctx).
		Where("round = ? AND table_no = ?", round, table).
		Order("position ASC").
		Find(&rows).Error
	return rows, translate(err, "load player scores")
}

// AllScores returns every detailed row.
func (s *Store) AllScores(ctx context.Context) ([]models.PlayerRoundScore, error) {
	var rows []models.PlayerRoundScore
	err := s.db.WithContext(ctx).Order("round, table_no, position").Find(&rows).Error
	return rows, translate(err, "load scores")
}

// AddAdjustment appends a ledger entry for an existing player.
func (s *Store) AddAdjustment(ctx context.Context, adj *models.PlayerAdjustment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Player{}).Where("id = ?", adj.PlayerID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("player #%d: %w", adj.PlayerID, ErrNotFound)
		}
		return tx.Create(adj).Error
	})
	return translate(err, "add adjustment")
}

// Adjustments lists a player's ledger, oldest first.
func (s *Store) Adjustments(ctx context.Context, playerID int) ([]models.PlayerAdjustment, error) {
	var rows []models.PlayerAdjustment
	err := s.db.WithContext(ctx).Where("player_id = ?", playerID).Order("id ASC").Find(&rows).Error
	return rows, translate(err, "load adjustments")
}

// AdjustmentTotals sums every player's deltas.
func (s *Store) AdjustmentTotals(ctx context.Context) (map[int]int, error) {
	var rows []struct {
		PlayerID int
		Total    int
	}
	err := s.db.WithContext(ctx).
		Model(&models.PlayerAdjustment{}).
		Select("player_id, SUM(delta_points) AS total").
		Group("player_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "sum adjustments")
	}
	out := make(map[int]int, len(rows))
	for _, r := range rows {
		out[r.PlayerID] = r.Total
	}
	return out, nil
}
