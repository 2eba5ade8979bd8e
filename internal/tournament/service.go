// Package tournament is the single entry point front ends use: the HTTP API, the CLI and
// the report exporter all go through Service.
//
// Service validates input before touching the store, serializes writers, recomputes the
// ranking after every change that can affect it and announces changes on the live hub.
// Every method returns an *Error on failure.
package tournament

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/trentd187/domino-tournament/internal/live"
	"github.com/trentd187/domino-tournament/internal/logging"
	"github.com/trentd187/domino-tournament/internal/metrics"
	"github.com/trentd187/domino-tournament/internal/models"
	"github.com/trentd187/domino-tournament/internal/ranking"
	"github.com/trentd187/domino-tournament/internal/store"
)

// DefaultFee is the registration fee used when none is given.
const DefaultFee = 5000

// Options tunes a Service. Zero values fall back to the defaults.
type Options struct {
	MaxPlayers int
	MaxRounds  int
	WinWeight  int
	// Rand drives seating. Tests pass a seeded source; nil means a randomly seeded one.
	Rand    *rand.Rand
	Metrics *metrics.Metrics
	Hub     *live.Hub
}

// Service implements the tournament operations over a Store.
type Service struct {
	store *store.Store
	opts  Options

	// mu serializes every write and the recompute that follows it.
	mu  sync.Mutex
	rng *rand.Rand

	recompute singleflight.Group
}

// New builds a Service.
func New(st *store.Store, opts Options) *Service {
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = 100
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = 5
	}
	if opts.WinWeight <= 0 {
		opts.WinWeight = ranking.DefaultWinWeight
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Service{store: st, opts: opts, rng: rng}
}

// MaxRounds is the highest round number GenerateRound accepts.
func (s *Service) MaxRounds() int { return s.opts.MaxRounds }

// Store returns the underlying store.
func (s *Service) Store() *store.Store { return s.store }

// fail classifies err, counts it and logs store failures with their cause.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	e := classify(err)
	if e == nil {
		return nil
	}
	s.opts.Metrics.Failed(op, string(e.Kind))
	if e.Kind == KindStore {
		logging.FromContext(ctx).Error().Err(e.Err).Str("operation", op).Msg("store failure")
	}
	return e
}

// Recompute rebuilds every player's G, P, E and R from the recorded results. Concurrent
// calls share one run.
func (s *Service) Recompute(ctx context.Context) ([]ranking.Standing, error) {
	v, err, _ := s.recompute.Do("recompute", func() (any, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.recomputeLocked(ctx)
	})
	if err != nil {
		return nil, s.fail(ctx, "recompute", err)
	}
	return v.([]ranking.Standing), nil
}

// recomputeLocked runs a full recompute. Caller holds mu.
func (s *Service) recomputeLocked(ctx context.Context) ([]ranking.Standing, error) {
	start := time.Now()

	ids, err := s.store.PlayerIDs(ctx)
	if err != nil {
		return nil, err
	}
	scores, err := s.store.AllScores(ctx)
	if err != nil {
		return nil, err
	}
	results, err := s.store.AllResults(ctx)
	if err != nil {
		return nil, err
	}
	seats, err := s.store.AllSeats(ctx)
	if err != nil {
		return nil, err
	}
	adjustments, err := s.store.AdjustmentTotals(ctx)
	if err != nil {
		return nil, err
	}

	standings := ranking.Compute(ranking.Input{
		PlayerIDs:   ids,
		Scores:      scores,
		Results:     results,
		Seats:       seats,
		Adjustments: adjustments,
	}, s.opts.WinWeight)

	rows := make([]models.PlayerStats, 0, len(standings))
	for _, st := range standings {
		rows = append(rows, st.Stats())
	}
	if err := s.store.ReplaceStats(ctx, rows); err != nil {
		return nil, err
	}

	s.opts.Metrics.Recomputed(time.Since(start), len(standings))
	s.opts.Hub.Publish(live.Event{Type: live.RankingUpdated})
	logging.FromContext(ctx).Debug().Int("players", len(standings)).Dur("took", time.Since(start)).Msg("ranking recomputed")
	return standings, nil
}
