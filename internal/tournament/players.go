package tournament

import (
	"context"
	"strings"

	"github.com/trentd187/domino-tournament/internal/models"
)

// PlayerInput is a registration request. A nil Fee means DefaultFee.
type PlayerInput struct {
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone"`
	Fee        *int   `json:"fee,omitempty"`
}

// Register adds a player to the roster with zeroed stats.
func (s *Service) Register(ctx context.Context, in PlayerInput) (models.Player, error) {
	p := models.Player{
		Name:       strings.TrimSpace(in.Name),
		Surname:    strings.TrimSpace(in.Surname),
		NationalID: strings.TrimSpace(in.NationalID),
		Phone:      strings.TrimSpace(in.Phone),
		Fee:        DefaultFee,
	}
	if in.Fee != nil {
		p.Fee = *in.Fee
	}

	switch {
	case p.Name == "":
		return models.Player{}, s.fail(ctx, "register", validationf("name is required"))
	case p.Surname == "":
		return models.Player{}, s.fail(ctx, "register", validationf("surname is required"))
	case p.NationalID == "":
		return models.Player{}, s.fail(ctx, "register", validationf("national id is required"))
	case p.Fee < 0:
		return models.Player{}, s.fail(ctx, "register", validationf("fee must not be negative"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.CreatePlayer(ctx, &p, s.opts.MaxPlayers); err != nil {
		return models.Player{}, s.fail(ctx, "register", err)
	}
	return p, nil
}

// ListPlayers returns the roster ordered by id.
func (s *Service) ListPlayers(ctx context.Context) ([]models.Player, error) {
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, s.fail(ctx, "list_players", err)
	}
	return players, nil
}

// PlayerCount returns the roster size.
func (s *Service) PlayerCount(ctx context.Context) (int, error) {
	n, err := s.store.CountPlayers(ctx)
	if err != nil {
		return 0, s.fail(ctx, "player_count", err)
	}
	return n, nil
}

// ApplyAdjustment appends a signed point delta to a player's ledger and recomputes the
// ranking.
func (s *Service) ApplyAdjustment(ctx context.Context, playerID, delta int, reason string) (models.PlayerAdjustment, error) {
	if playerID <= 0 {
		return models.PlayerAdjustment{}, s.fail(ctx, "adjust", validationf("player id must be positive"))
	}
	adj := models.PlayerAdjustment{PlayerID: playerID, DeltaPoints: delta, Reason: strings.TrimSpace(reason)}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.AddAdjustment(ctx, &adj); err != nil {
		return models.PlayerAdjustment{}, s.fail(ctx, "adjust", err)
	}
	s.opts.Metrics.AdjustmentApplied()

	if _, err := s.recomputeLocked(ctx); err != nil {
		return adj, s.fail(ctx, "adjust", err)
	}
	return adj, nil
}

// Adjustments lists a player's ledger.
func (s *Service) Adjustments(ctx context.Context, playerID int) ([]models.PlayerAdjustment, error) {
	if _, err := s.store.GetPlayer(ctx, playerID); err != nil {
		return nil, s.fail(ctx, "adjustments", err)
	}
	rows, err := s.store.Adjustments(ctx, playerID)
	if err != nil {
		return nil, s.fail(ctx, "adjustments", err)
	}
	return rows, nil
}
