// Package seating generates table assignments for a round.
//
// Round 1 shuffles the whole roster into tables of four. Every later round is derived from
// the round immediately before it: each partnership of that round is split so the two
// former partners face each other as opponents.
//
// The functions here are pure: they take player ids and a random source and return an
// Assignment. Persisting it is the store's job.
package seating

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/trentd187/domino-tournament/internal/models"
)

// TableSize is the number of seats at a domino table.
const TableSize = 4

var (
	// ErrNotEnoughPlayers is returned when fewer than four players are available.
	ErrNotEnoughPlayers = errors.New("at least 4 players are required to generate a round")
	// ErrNoPreviousRound is returned when the round to derive from has no tables.
	ErrNoPreviousRound = errors.New("previous round has no table assignment")
	// ErrNotEnoughPairs is returned when the previous round yields fewer than two pairs.
	ErrNotEnoughPairs = errors.New("at least 2 partnerships are required to generate a round")
	// ErrInvalidAssignment wraps any uniqueness violation found by Validate.
	ErrInvalidAssignment = errors.New("invalid round assignment")
)

// Table is one four-person table; Players is indexed in A, B, C, D order.
type Table struct {
	Number  int    `json:"table"`
	Players [4]int `json:"players"`
}

// At returns the player sitting at pos.
func (t Table) At(pos models.Position) int {
	for i, p := range models.Positions {
		if p == pos {
			return t.Players[i]
		}
	}
	return 0
}

// Partners returns the two partnerships of the table: (A, C) and (B, D).
func (t Table) Partners() [2]Pair {
	return [2]Pair{
		{t.At(models.PositionA), t.At(models.PositionC)},
		{t.At(models.PositionB), t.At(models.PositionD)},
	}
}

// Pair is two players who played as partners.
type Pair [2]int

// Assignment is the full seating of one round.
type Assignment struct {
	Round  int     `json:"round"`
	Tables []Table `json:"tables"`
	// Excluded lists players left out of this round because the roster (round 1) or the
	// number of partnerships (later rounds) did not divide evenly.
	Excluded []int `json:"excluded"`
}

// Seats flattens the assignment into seat rows.
func (a Assignment) Seats() []models.Seat {
	seats := make([]models.Seat, 0, len(a.Tables)*TableSize)
	for _, t := range a.Tables {
		for i, pos := range models.Positions {
			seats = append(seats, models.Seat{
				Round:    a.Round,
				TableNo:  t.Number,
				Position: pos,
				PlayerID: t.Players[i],
			})
		}
	}
	return seats
}

// PlayerCount returns how many players are seated.
func (a Assignment) PlayerCount() int {
	return len(a.Tables) * TableSize
}

// FirstRound shuffles playerIDs and seats them in consecutive groups of four as A, B, C, D.
// Leftover players are reported in Excluded.
func FirstRound(playerIDs []int, rng *rand.Rand) (Assignment, error) {
	if len(playerIDs) < TableSize {
		return Assignment{}, fmt.Errorf("%w: have %d", ErrNotEnoughPlayers, len(playerIDs))
	}

	ids := append([]int(nil), playerIDs...)
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	full := len(ids) / TableSize
	a := Assignment{Round: 1, Tables: make([]Table, 0, full)}
	for n := 0; n < full; n++ {
		var t Table
		t.Number = n + 1
		copy(t.Players[:], ids[n*TableSize:(n+1)*TableSize])
		a.Tables = append(a.Tables, t)
	}
	a.Excluded = sortedCopy(ids[full*TableSize:])
	return a, nil
}

// NextRound derives round from the tables of the round before it.
//
// Every partnership of prev is collected, the pairs are shuffled, the members of each pair
// are put in random order, and pairs are merged two at a time: old (p, q) and old (r, s)
// become a table with A=p, B=q, C=r, D=s, so the new partnerships are (p, r) and (q, s)
// and former partners always sit on opposite sides. An odd leftover pair is excluded.
func NextRound(round int, prev []Table, rng *rand.Rand) (Assignment, error) {
	if round < 2 {
		return Assignment{}, fmt.Errorf("%w: round %d cannot be derived", ErrInvalidAssignment, round)
	}
	if len(prev) == 0 {
		return Assignment{}, ErrNoPreviousRound
	}

	return MergePairs(round, PairsOf(prev), rng)
}

// MergePairs shuffles pairs, randomizes each pair's member order and merges them two at a
// time into tables. It does not modify pairs. An odd leftover pair is excluded.
func MergePairs(round int, pairs []Pair, rng *rand.Rand) (Assignment, error) {
	if len(pairs) < 2 {
		return Assignment{}, ErrNotEnoughPairs
	}
	pairs = append([]Pair(nil), pairs...)

	rng.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })
	for i := range pairs {
		if rng.IntN(2) == 1 {
			pairs[i][0], pairs[i][1] = pairs[i][1], pairs[i][0]
		}
	}

	a := Assignment{Round: round, Tables: make([]Table, 0, len(pairs)/2), Excluded: []int{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		first, second := pairs[i], pairs[i+1]
		a.Tables = append(a.Tables, Table{
			Number:  len(a.Tables) + 1,
			Players: [4]int{first[0], first[1], second[0], second[1]},
		})
	}
	if len(pairs)%2 == 1 {
		last := pairs[len(pairs)-1]
		a.Excluded = sortedCopy(last[:])
	}
	return a, nil
}

// PairsOf extracts every partnership from a round, table by table.
func PairsOf(tables []Table) []Pair {
	pairs := make([]Pair, 0, len(tables)*2)
	for _, t := range tables {
		p := t.Partners()
		pairs = append(pairs, p[0], p[1])
	}
	return pairs
}

// Validate checks that no player is seated twice and that no (table, position) repeats.
func Validate(a Assignment) error {
	seenPlayers := make(map[int]struct{}, a.PlayerCount())
	seenTables := make(map[int]struct{}, len(a.Tables))
	for _, t := range a.Tables {
		if t.Number < 1 {
			return fmt.Errorf("%w: table number %d", ErrInvalidAssignment, t.Number)
		}
		if _, dup := seenTables[t.Number]; dup {
			return fmt.Errorf("%w: duplicate seat at round %d, table %d", ErrInvalidAssignment, a.Round, t.Number)
		}
		seenTables[t.Number] = struct{}{}

		for i, id := range t.Players {
			if id <= 0 {
				return fmt.Errorf("%w: empty seat %s at table %d", ErrInvalidAssignment, models.Positions[i], t.Number)
			}
			if _, dup := seenPlayers[id]; dup {
				return fmt.Errorf("%w: player #%d is repeated in round %d", ErrInvalidAssignment, id, a.Round)
			}
			seenPlayers[id] = struct{}{}
		}
	}
	return nil
}

// TablesFromSeats rebuilds complete tables from persisted seat rows of one round.
func TablesFromSeats(seats []models.Seat) ([]Table, error) {
	byNumber := map[int]*Table{}
	filled := map[int]int{}
	for _, s := range seats {
		t, ok := byNumber[s.TableNo]
		if !ok {
			t = &Table{Number: s.TableNo}
			byNumber[s.TableNo] = t
		}
		idx := -1
		for i, p := range models.Positions {
			if p == s.Position {
				idx = i
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: unknown position %q at table %d", ErrInvalidAssignment, s.Position, s.TableNo)
		}
		if t.Players[idx] != 0 {
			return nil, fmt.Errorf("%w: seat %s at table %d is occupied twice", ErrInvalidAssignment, s.Position, s.TableNo)
		}
		t.Players[idx] = s.PlayerID
		filled[s.TableNo]++
	}

	tables := make([]Table, 0, len(byNumber))
	for n, t := range byNumber {
		if filled[n] != TableSize {
			return nil, fmt.Errorf("%w: table %d has %d players", ErrInvalidAssignment, n, filled[n])
		}
		tables = append(tables, *t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Number < tables[j].Number })
	return tables, nil
}

func sortedCopy(ids []int) []int {
	out := append([]int{}, ids...)
	sort.Ints(out)
	return out
}
