// Package ranking turns recorded results into the tournament standings.
//
// Everything here is pure: the caller loads scores, results and adjustments from the store,
// feeds them to a Tally and persists what Rank returns. Running it twice over the same input
// gives the same standings.
package ranking

import (
	"sort"

	"github.com/trentd187/domino-tournament/internal/models"
)

// DefaultWinWeight is how many points one game won is worth in Effectiveness.
const DefaultWinWeight = 100

// Effectiveness is the single ranking score: E = G*winWeight + P.
func Effectiveness(gamesWon, points, winWeight int) int {
	return gamesWon*winWeight + points
}

// Standing is one player's line in the ranking.
type Standing struct {
	PlayerID      int `json:"player_id"`
	GamesWon      int `json:"g"`
	Points        int `json:"p"`
	Effectiveness int `json:"e"`
	Rank          int `json:"r"`
}

// Stats converts the standing into its persisted row.
func (s Standing) Stats() models.PlayerStats {
	return models.PlayerStats{
		PlayerID:      s.PlayerID,
		GamesWon:      s.GamesWon,
		Points:        s.Points,
		Effectiveness: s.Effectiveness,
		Rank:          s.Rank,
	}
}

type tableKey struct{ round, table int }

// Tally accumulates G and P per player. Build it with NewTally, feed it, then call Rank.
type Tally struct {
	totals   map[int]*Standing
	detailed map[tableKey]bool
}

// NewTally starts every listed player at zero. Players not listed are ignored by the Add
// methods, so a stray row for an unknown id cannot create a ranking line.
func NewTally(playerIDs []int) *Tally {
	t := &Tally{
		totals:   make(map[int]*Standing, len(playerIDs)),
		detailed: map[tableKey]bool{},
	}
	for _, id := range playerIDs {
		t.totals[id] = &Standing{PlayerID: id}
	}
	return t
}

// AddScores credits detailed per-player rows: final points always, and one game won when the
// player's position belongs to the winning partnership.
func (t *Tally) AddScores(rows []models.PlayerRoundScore) {
	for _, row := range rows {
		t.detailed[tableKey{row.Round, row.TableNo}] = true
		s, ok := t.totals[row.PlayerID]
		if !ok {
			continue
		}
		s.Points += row.FinalPoints
		if row.Won() {
			s.GamesWon++
		}
	}
}

// AddLegacyResults credits aggregate table results to the players seated at that table:
// side 1 total to A and C, side 2 total to B and D, a game won to both winners. Draws credit
// no game. Tables that already have detailed rows are skipped, so call AddScores first.
func (t *Tally) AddLegacyResults(results []models.TableResult, seats []models.Seat) {
	seatsByTable := map[tableKey][]models.Seat{}
	for _, s := range seats {
		k := tableKey{s.Round, s.TableNo}
		seatsByTable[k] = append(seatsByTable[k], s)
	}

	for _, res := range results {
		k := tableKey{res.Round, res.TableNo}
		if t.detailed[k] {
			continue
		}
		winners := res.Winner.Partnership()
		for _, seat := range seatsByTable[k] {
			s, ok := t.totals[seat.PlayerID]
			if !ok {
				continue
			}
			switch seat.Position.Partnership() {
			case models.PartnershipAC:
				s.Points += res.PointsSide1
			case models.PartnershipBD:
				s.Points += res.PointsSide2
			}
			if winners != "" && winners.Includes(seat.Position) {
				s.GamesWon++
			}
		}
	}
}

// AddAdjustments adds each player's summed adjustment delta to P.
func (t *Tally) AddAdjustments(deltas map[int]int) {
	for id, delta := range deltas {
		if s, ok := t.totals[id]; ok {
			s.Points += delta
		}
	}
}

// Rank computes E with winWeight and orders players by E desc, P desc, G desc, id asc,
// assigning R = 1..N in that order.
func (t *Tally) Rank(winWeight int) []Standing {
	out := make([]Standing, 0, len(t.totals))
	for _, s := range t.totals {
		st := *s
		st.Effectiveness = Effectiveness(st.GamesWon, st.Points, winWeight)
		out = append(out, st)
	}
	Sort(out)
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Sort orders standings by E desc, P desc, G desc, player id asc.
func Sort(standings []Standing) {
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Effectiveness != b.Effectiveness {
			return a.Effectiveness > b.Effectiveness
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GamesWon != b.GamesWon {
			return a.GamesWon > b.GamesWon
		}
		return a.PlayerID < b.PlayerID
	})
}

// Input bundles everything a recompute reads from the store.
type Input struct {
	PlayerIDs   []int
	Scores      []models.PlayerRoundScore
	Results     []models.TableResult
	Seats       []models.Seat
	Adjustments map[int]int
}

// Compute runs a full recompute over in.
func Compute(in Input, winWeight int) []Standing {
	t := NewTally(in.PlayerIDs)
	t.AddScores(in.Scores)
	t.AddLegacyResults(in.Results, in.Seats)
	t.AddAdjustments(in.Adjustments)
	return t.Rank(winWeight)
}
