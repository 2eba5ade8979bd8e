package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/trentd187/domino-tournament/internal/models"
)

// RankingRow is a player joined with their derived stats.
type RankingRow struct {
	PlayerID      int    `gorm:"column:player_id" json:"player_id"`
	Name          string `gorm:"column:name" json:"name"`
	Surname       string `gorm:"column:surname" json:"surname"`
	GamesWon      int    `gorm:"column:g" json:"g"`
	Points        int    `gorm:"column:p" json:"p"`
	Effectiveness int    `gorm:"column:e" json:"e"`
	Rank          int    `gorm:"column:r" json:"r"`
}

// ReplaceStats overwrites the whole player_stats table with stats.
func (s *Store) ReplaceStats(ctx context.Context, stats []models.PlayerStats) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.PlayerStats{}).Error; err != nil {
			return err
		}
		if len(stats) == 0 {
			return nil
		}
		return tx.CreateInBatches(&stats, 200).Error
	})
	return translate(err, "replace stats")
}

// Ranking returns the current standings in rank order.
func (s *Store) Ranking(ctx context.Context) ([]RankingRow, error) {
	var rows []RankingRow
	err := s.db.WithContext(ctx).
		Table("player_stats AS s").
		Select("s.player_id, p.name, p.surname, s.g, s.p, s.e, s.r").
		Joins("JOIN players AS p ON p.id = s.player_id").
		Order("s.e DESC, s.p DESC, s.g DESC, s.player_id ASC").
		Scan(&rows).Error
	return rows, translate(err, "load ranking")
}

// StatsByPlayer loads the stats of the given players keyed by id.
func (s *Store) StatsByPlayer(ctx context.Context, ids []int) (map[int]models.PlayerStats, error) {
	out := make(map[int]models.PlayerStats, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.PlayerStats
	if err := s.db.WithContext(ctx).Where("player_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translate(err, "load stats")
	}
	for _, r := range rows {
		out[r.PlayerID] = r
	}
	return out, nil
}
