package tournament

import (
	"context"
	"sort"

	"github.com/trentd187/domino-tournament/internal/live"
	"github.com/trentd187/domino-tournament/internal/logging"
	"github.com/trentd187/domino-tournament/internal/models"
	"github.com/trentd187/domino-tournament/internal/seating"
)

// SeatedPlayer is one seat of a table with the player's identity.
type SeatedPlayer struct {
	Position models.Position `json:"position"`
	PlayerID int             `json:"player_id"`
	Name     string          `json:"name"`
	Surname  string          `json:"surname"`
}

// TableView is a seated table with its current state.
type TableView struct {
	Number int               `json:"table"`
	Status models.TableState `json:"status"`
	Seats  [4]SeatedPlayer   `json:"seats"`
}

// RoundView is the persisted seating of a round.
type RoundView struct {
	Round  int         `json:"round"`
	Tables []TableView `json:"tables"`
	// Unseated lists registered players with no seat in this round.
	Unseated []int `json:"unseated"`
}

// SeatListEntry is one line of the round assignment sheet.
type SeatListEntry struct {
	PlayerID int             `json:"player_id"`
	Name     string          `json:"name"`
	Surname  string          `json:"surname"`
	Table    int             `json:"table"`
	Position models.Position `json:"position"`
}

func (s *Service) checkRound(round int) error {
	if round < 1 || round > s.opts.MaxRounds {
		return validationf("round must be between 1 and %d", s.opts.MaxRounds)
	}
	return nil
}

func checkTable(table int) error {
	if table < 1 {
		return validationf("table must be a positive number")
	}
	return nil
}

// GenerateRound seats round and persists it, replacing any earlier seating of the same
// round. Round 1 shuffles the roster; later rounds split the partnerships of the round
// before. It fails once the round has scores.
func (s *Service) GenerateRound(ctx context.Context, round int) (seating.Assignment, error) {
	if err := s.checkRound(round); err != nil {
		return seating.Assignment{}, s.fail(ctx, "generate_round", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scored, err := s.store.RoundHasScores(ctx, round)
	if err != nil {
		return seating.Assignment{}, s.fail(ctx, "generate_round", err)
	}
	if scored {
		return seating.Assignment{}, s.fail(ctx, "generate_round",
			conflictf("round %d already has scores recorded and cannot be regenerated", round))
	}

	var a seating.Assignment
	if round == 1 {
		ids, err := s.store.PlayerIDs(ctx)
		if err != nil {
			return seating.Assignment{}, s.fail(ctx, "generate_round", err)
		}
		a, err = seating.FirstRound(ids, s.rng)
		if err != nil {
			return seating.Assignment{}, s.fail(ctx, "generate_round", err)
		}
	} else {
		prev, err := s.store.Seats(ctx, round-1)
		if err != nil {
			return seating.Assignment{}, s.fail(ctx, "generate_round", err)
		}
		if len(prev) == 0 {
			return seating.Assignment{}, s.fail(ctx, "generate_round",
				conflictf("round %d has no table assignment; generate it first", round-1))
		}
		tables, err := seating.TablesFromSeats(prev)
		if err != nil {
			return seating.Assignment{}, s.fail(ctx, "generate_round", err)
		}
		a, err = seating.NextRound(round, tables, s.rng)
		if err != nil {
			return seating.Assignment{}, s.fail(ctx, "generate_round", err)
		}
	}

	if err := s.store.SaveRound(ctx, a); err != nil {
		return seating.Assignment{}, s.fail(ctx, "generate_round", err)
	}

	s.opts.Metrics.RoundGenerated(round)
	s.opts.Hub.Publish(live.Event{Type: live.RoundGenerated, Round: round})
	logging.FromContext(ctx).Info().
		Int("round", round).
		Int("tables", len(a.Tables)).
		Ints("excluded", a.Excluded).
		Msg("round generated")

	if _, err := s.recomputeLocked(ctx); err != nil {
		return a, s.fail(ctx, "generate_round", err)
	}
	return a, nil
}

// RoundAssignment returns the persisted seating of round. A round never generated has no
// tables.
func (s *Service) RoundAssignment(ctx context.Context, round int) (RoundView, error) {
	if err := s.checkRound(round); err != nil {
		return RoundView{}, s.fail(ctx, "round_assignment", err)
	}

	seats, err := s.store.Seats(ctx, round)
	if err != nil {
		return RoundView{}, s.fail(ctx, "round_assignment", err)
	}
	statuses, err := s.store.TableStatuses(ctx, round)
	if err != nil {
		return RoundView{}, s.fail(ctx, "round_assignment", err)
	}
	ids, err := s.store.PlayerIDs(ctx)
	if err != nil {
		return RoundView{}, s.fail(ctx, "round_assignment", err)
	}

	view := RoundView{Round: round, Tables: []TableView{}, Unseated: []int{}}
	seated := make(map[int]bool, len(seats))
	byTable := map[int]*TableView{}
	var order []int
	for _, seat := range seats {
		seated[seat.PlayerID] = true
		tv, ok := byTable[seat.TableNo]
		if !ok {
			tv = &TableView{Number: seat.TableNo, Status: statuses[seat.TableNo]}
			if tv.Status == "" {
				tv.Status = models.TableInProgress
			}
			byTable[seat.TableNo] = tv
			order = append(order, seat.TableNo)
		}
		tv.Seats[positionIndex(seat.Position)] = seatedPlayer(seat)
	}
	sort.Ints(order)
	for _, n := range order {
		view.Tables = append(view.Tables, *byTable[n])
	}
	for _, id := range ids {
		if !seated[id] {
			view.Unseated = append(view.Unseated, id)
		}
	}
	return view, nil
}

// RoundSeatList returns every seated player of round with their table, ordered by player
// id. It is the data behind the printed "ID | Table" sheet.
func (s *Service) RoundSeatList(ctx context.Context, round int) ([]SeatListEntry, error) {
	if err := s.checkRound(round); err != nil {
		return nil, s.fail(ctx, "round_seat_list", err)
	}
	seats, err := s.store.Seats(ctx, round)
	if err != nil {
		return nil, s.fail(ctx, "round_seat_list", err)
	}

	out := make([]SeatListEntry, 0, len(seats))
	for _, seat := range seats {
		sp := seatedPlayer(seat)
		out = append(out, SeatListEntry{
			PlayerID: seat.PlayerID,
			Name:     sp.Name,
			Surname:  sp.Surname,
			Table:    seat.TableNo,
			Position: seat.Position,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

// Rounds lists the rounds that have a seating.
func (s *Service) Rounds(ctx context.Context) ([]int, error) {
	rounds, err := s.store.Rounds(ctx)
	if err != nil {
		return nil, s.fail(ctx, "rounds", err)
	}
	return rounds, nil
}

// TableStatus returns whether a table is in progress or finished.
func (s *Service) TableStatus(ctx context.Context, round, table int) (models.TableState, error) {
	if err := s.checkRound(round); err != nil {
		return "", s.fail(ctx, "table_status", err)
	}
	if err := checkTable(table); err != nil {
		return "", s.fail(ctx, "table_status", err)
	}
	st, err := s.store.TableStatus(ctx, round, table)
	if err != nil {
		return "", s.fail(ctx, "table_status", err)
	}
	return st, nil
}

// SetTableStatus changes a table's state by hand, e.g. to reopen a table for correction.
func (s *Service) SetTableStatus(ctx context.Context, round, table int, state models.TableState) error {
	if err := s.checkRound(round); err != nil {
		return s.fail(ctx, "set_table_status", err)
	}
	if err := checkTable(table); err != nil {
		return s.fail(ctx, "set_table_status", err)
	}
	if !state.Valid() {
		return s.fail(ctx, "set_table_status", validationf("status must be %q or %q", models.TableInProgress, models.TableFinished))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetTableStatus(ctx, round, table, state); err != nil {
		return s.fail(ctx, "set_table_status", err)
	}
	s.opts.Hub.Publish(live.Event{Type: live.TableStatus, Round: round, Table: table, Status: string(state)})
	return nil
}

func positionIndex(p models.Position) int {
	for i, pos := range models.Positions {
		if pos == p {
			return i
		}
	}
	return 0
}

func seatedPlayer(seat models.Seat) SeatedPlayer {
	sp := SeatedPlayer{Position: seat.Position, PlayerID: seat.PlayerID}
	if seat.Player != nil {
		sp.Name = seat.Player.Name
		sp.Surname = seat.Player.Surname
	}
	return sp
}
