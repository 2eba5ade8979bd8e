package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trentd187/domino-tournament/internal/models"
	"github.com/trentd187/domino-tournament/internal/seating"
)

// roundOwned lists the models that belong to a round and are replaced when it is regenerated.
var roundOwned = []any{
	&models.PlayerRoundScore{},
	&models.TableResult{},
	&models.TableStatus{},
	&models.Seat{},
}

// SaveRound replaces the seating of a.Round. Inside one transaction it refuses rounds that
// already have scores, clears the round's seats, statuses, results and scores, and inserts
// the new seats with every table in progress. Nothing is written if any step fails.
func (s *Store) SaveRound(ctx context.Context, a seating.Assignment) error {
	if err := seating.Validate(a); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scored, err := roundHasScores(tx, a.Round)
		if err != nil {
			return err
		}
		if scored {
			return fmt.Errorf("round %d: %w", a.Round, ErrRoundHasScores)
		}

		for _, m := range roundOwned {
			if err := tx.Where("round = ?", a.Round).Delete(m).Error; err != nil {
				return err
			}
		}

		if seats := a.Seats(); len(seats) > 0 {
			if err := tx.Create(&seats).Error; err != nil {
				return err
			}
		}

		statuses := make([]models.TableStatus, 0, len(a.Tables))
		for _, t := range a.Tables {
			statuses = append(statuses, models.TableStatus{Round: a.Round, TableNo: t.Number, Status: models.TableInProgress})
		}
		if len(statuses) > 0 {
			return tx.Create(&statuses).Error
		}
		return nil
	})
	return translate(err, fmt.Sprintf("save round %d", a.Round))
}

// RoundHasScores reports whether any table of round has a detailed score or an aggregate
// result.
func (s *Store) RoundHasScores(ctx context.Context, round int) (bool, error) {
	scored, err := roundHasScores(s.db.WithContext(ctx), round)
	return scored, translate(err, fmt.Sprintf("check scores of round %d", round))
}

func roundHasScores(tx *gorm.DB, round int) (bool, error) {
	var n int64
	if err := tx.Model(&models.PlayerRoundScore{}).Where("round = ?", round).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	if err := tx.Model(&models.TableResult{}).Where("round = ?", round).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Seats returns the seating of round with players preloaded, ordered by table then position.
func (s *Store) Seats(ctx context.Context, round int) ([]models.Seat, error) {
	var seats []models.Seat
	err := s.db.WithContext(ctx).
		Preload("Player").
		Where("round = ?", round).
		Order("table_no ASC, position ASC").
		Find(&seats).Error
	return seats, translate(err, fmt.Sprintf("load seats of round %d", round))
}

// TableSeats returns the four seats of one table, ordered A to D.
func (s *Store) TableSeats(ctx context.Context, round, table int) ([]models.Seat, error) {
	var seats []models.Seat
	err := s.db.WithContext(ctx).
		Preload("Player").
		Where("round = ? AND table_no = ?", round, table).
		Order("position ASC").
		Find(&seats).Error
	if err != nil {
		return nil, translate(err, "load table seats")
	}
	if len(seats) == 0 {
		return nil, fmt.Errorf("round %d table %d: %w", round, table, ErrNotFound)
	}
	return seats, nil
}

// AllSeats returns every seat of every round, without players.
func (s *Store) AllSeats(ctx context.Context) ([]models.Seat, error) {
	var seats []models.Seat
	err := s.db.WithContext(ctx).Order("round, table_no, position").Find(&seats).Error
	return seats, translate(err, "load seats")
}

// Rounds returns the round numbers that have a seating, ascending.
func (s *Store) Rounds(ctx context.Context) ([]int, error) {
	var rounds []int
	err := s.db.WithContext(ctx).Model(&models.Seat{}).Distinct("round").Order("round ASC").Pluck("round", &rounds).Error
	return rounds, translate(err, "list rounds")
}

// TableExists reports whether round has seats at table.
func (s *Store) TableExists(ctx context.Context, round, table int) (bool, error) {
	ok, err := tableExists(s.db.WithContext(ctx), round, table)
	return ok, translate(err, "check table")
}

func tableExists(tx *gorm.DB, round, table int) (bool, error) {
	var n int64
	err := tx.Model(&models.Seat{}).Where("round = ? AND table_no = ?", round, table).Count(&n).Error
	return n > 0, err
}

// TableStatus returns the play state of a table.
func (s *Store) TableStatus(ctx context.Context, round, table int) (models.TableState, error) {
	var st models.TableStatus
	err := s.db.WithContext(ctx).Where("round = ? AND table_no = ?", round, table).First(&st).Error
	if err != nil {
		return "", translate(err, fmt.Sprintf("status of round %d table %d", round, table))
	}
	return st.Status, nil
}

// TableStatuses returns the state of every table of round keyed by table number.
func (s *Store) TableStatuses(ctx context.Context, round int) (map[int]models.TableState, error) {
	var rows []models.TableStatus
	if err := s.db.WithContext(ctx).Where("round = ?", round).Find(&rows).Error; err != nil {
		return nil, translate(err, "load table statuses")
	}
	out := make(map[int]models.TableState, len(rows))
	for _, r := range rows {
		out[r.TableNo] = r.Status
	}
	return out, nil
}

// SetTableStatus updates (or creates) the status row of an existing table.
func (s *Store) SetTableStatus(ctx context.Context, round, table int, state models.TableState) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := tableExists(tx, round, table)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("round %d table %d: %w", round, table, ErrNotFound)
		}
		return upsertStatus(tx, round, table, state)
	})
	return translate(err, "set table status")
}

func upsertStatus(tx *gorm.DB, round, table int, state models.TableState) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "round"}, {Name: "table_no"}},
		DoUpdates: clause.AssignmentColumns([]string{"status"}),
	}).Create(&models.TableStatus{Round: round, TableNo: table, Status: state}).Error
}
