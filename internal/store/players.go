package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/trentd187/domino-tournament/internal/models"
)

// CreatePlayer inserts p and its zeroed stats row in one transaction. It fails with
// ErrRosterFull when maxPlayers are already registered. p.ID is set on success.
func (s *Store) CreatePlayer(ctx context.Context, p *models.Player, maxPlayers int) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Player{}).Count(&count).Error; err != nil {
			return err
		}
		if maxPlayers > 0 && count >= int64(maxPlayers) {
			return fmt.Errorf("%w: %d of %d", ErrRosterFull, count, maxPlayers)
		}

		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return tx.Create(&models.PlayerStats{PlayerID: p.ID}).Error
	})
	return translate(err, "create player")
}

// ListPlayers returns the roster ordered by id.
func (s *Store) ListPlayers(ctx context.Context) ([]models.Player, error) {
	var players []models.Player
	err := s.db.WithContext(ctx).Order("id ASC").Find(&players).Error
	return players, translate(err, "list players")
}

// PlayerIDs returns every registered id in ascending order.
func (s *Store) PlayerIDs(ctx context.Context) ([]int, error) {
	var ids []int
	err := s.db.WithContext(ctx).Model(&models.Player{}).Order("id ASC").Pluck("id", &ids).Error
	return ids, translate(err, "list player ids")
}

// CountPlayers returns the roster size.
func (s *Store) CountPlayers(ctx context.Context) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Player{}).Count(&count).Error
	return int(count), translate(err, "count players")
}

// GetPlayer loads one player.
func (s *Store) GetPlayer(ctx context.Context, id int) (models.Player, error) {
	var p models.Player
	err := s.db.WithContext(ctx).First(&p, id).Error
	return p, translate(err, fmt.Sprintf("player #%d", id))
}

// PlayersByID loads the given players keyed by id. Missing ids are simply absent.
func (s *Store) PlayersByID(ctx context.Context, ids []int) (map[int]models.Player, error) {
	out := make(map[int]models.Player, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var players []models.Player
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&players).Error; err != nil {
		return nil, translate(err, "load players")
	}
	for _, p := range players {
		out[p.ID] = p
	}
	return out, nil
}
