package seating

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trentd187/domino-tournament/internal/models"
)

func roster(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// partnerOf maps every seated player to the player on the same partnership.
func partnerOf(tables []Table) map[int]int {
	m := map[int]int{}
	for _, p := range PairsOf(tables) {
		m[p[0]] = p[1]
		m[p[1]] = p[0]
	}
	return m
}

func TestFirstRoundGrouping(t *testing.T) {
	for _, n := range []int{4, 7, 8, 13, 100} {
		a, err := FirstRound(roster(n), newRand(uint64(n)))
		require.NoError(t, err)

		assert.Equal(t, 1, a.Round)
		assert.Len(t, a.Tables, n/4, "n=%d", n)
		assert.Len(t, a.Excluded, n%4, "n=%d", n)
		require.NoError(t, Validate(a))

		seen := map[int]bool{}
		for i, tbl := range a.Tables {
			assert.Equal(t, i+1, tbl.Number)
			for _, id := range tbl.Players {
				seen[id] = true
			}
		}
		for _, id := range a.Excluded {
			assert.False(t, seen[id], "excluded player %d must not be seated", id)
			seen[id] = true
		}
		assert.Len(t, seen, n, "every player is either seated or excluded")
	}
}

func TestFirstRoundNeedsFourPlayers(t *testing.T) {
	_, err := FirstRound(roster(3), newRand(1))
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestFirstRoundDoesNotMutateInput(t *testing.T) {
	ids := roster(8)
	_, err := FirstRound(ids, newRand(3))
	require.NoError(t, err)
	assert.Equal(t, roster(8), ids)
}

func TestNextRoundSplitsPartners(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		r1, err := FirstRound(roster(40), newRand(seed))
		require.NoError(t, err)

		r2, err := NextRound(2, r1.Tables, newRand(seed+1000))
		require.NoError(t, err)
		require.NoError(t, Validate(r2))
		assert.Len(t, r2.Tables, 10)
		assert.Empty(t, r2.Excluded)

		before := partnerOf(r1.Tables)
		after := partnerOf(r2.Tables)
		for p, q := range before {
			assert.NotEqual(t, q, after[p], "seed %d: %d and %d were partners in round 1", seed, p, q)
		}

		// Former partners sit at the same table, on opposite sides.
		where := map[int]Table{}
		for _, tbl := range r2.Tables {
			for _, id := range tbl.Players {
				where[id] = tbl
			}
		}
		for p, q := range before {
			assert.Equal(t, where[p].Number, where[q].Number)
		}
	}
}

func TestNextRoundChainsFromPreviousRound(t *testing.T) {
	rng := newRand(99)
	prev, err := FirstRound(roster(16), rng)
	require.NoError(t, err)

	for round := 2; round <= 5; round++ {
		next, err := NextRound(round, prev.Tables, rng)
		require.NoError(t, err)
		assert.Equal(t, round, next.Round)

		before := partnerOf(prev.Tables)
		after := partnerOf(next.Tables)
		for p, q := range before {
			assert.NotEqual(t, q, after[p], "round %d", round)
		}
		prev = next
	}
}

func TestPairsOf(t *testing.T) {
	pairs := PairsOf([]Table{{Number: 1, Players: [4]int{1, 2, 3, 4}}})
	assert.Equal(t, []Pair{{1, 3}, {2, 4}}, pairs)
}

func TestMergePairsOddLeftoverIsExcluded(t *testing.T) {
	pairs := []Pair{{1, 2}, {3, 4}, {5, 6}}

	a, err := MergePairs(3, pairs, newRand(11))
	require.NoError(t, err)
	require.NoError(t, Validate(a))

	assert.Len(t, a.Tables, 1)
	assert.Len(t, a.Excluded, 2)
	assert.Equal(t, []Pair{{1, 2}, {3, 4}, {5, 6}}, pairs, "input is not reordered")

	// The excluded players were partners and the seated table splits the other two pairs.
	ex := a.Excluded
	assert.Contains(t, []Pair{{1, 2}, {3, 4}, {5, 6}}, Pair{ex[0], ex[1]})
	for _, p := range a.Tables[0].Partners() {
		assert.NotContains(t, pairs, p)
		assert.NotContains(t, pairs, Pair{p[1], p[0]})
	}
}

func TestMergePairsIsRandomizedAcrossRuns(t *testing.T) {
	pairs := PairsOf([]Table{
		{Number: 1, Players: [4]int{1, 2, 3, 4}},
		{Number: 2, Players: [4]int{5, 6, 7, 8}},
		{Number: 3, Players: [4]int{9, 10, 11, 12}},
		{Number: 4, Players: [4]int{13, 14, 15, 16}},
	})

	layouts := map[[4]int]bool{}
	for seed := uint64(0); seed < 30; seed++ {
		a, err := MergePairs(2, pairs, newRand(seed))
		require.NoError(t, err)
		layouts[a.Tables[0].Players] = true
	}
	assert.Greater(t, len(layouts), 1)
}

func TestNextRoundErrors(t *testing.T) {
	_, err := NextRound(2, nil, newRand(1))
	assert.ErrorIs(t, err, ErrNoPreviousRound)

	_, err = NextRound(1, []Table{{Number: 1, Players: [4]int{1, 2, 3, 4}}}, newRand(1))
	assert.ErrorIs(t, err, ErrInvalidAssignment)

	_, err = MergePairs(2, []Pair{{1, 2}}, newRand(1))
	assert.ErrorIs(t, err, ErrNotEnoughPairs)
}

func TestValidateRejectsDuplicates(t *testing.T) {
	dupPlayer := Assignment{Round: 1, Tables: []Table{
		{Number: 1, Players: [4]int{1, 2, 3, 4}},
		{Number: 2, Players: [4]int{5, 6, 7, 1}},
	}}
	assert.ErrorIs(t, Validate(dupPlayer), ErrInvalidAssignment)

	dupTable := Assignment{Round: 1, Tables: []Table{
		{Number: 1, Players: [4]int{1, 2, 3, 4}},
		{Number: 1, Players: [4]int{5, 6, 7, 8}},
	}}
	assert.ErrorIs(t, Validate(dupTable), ErrInvalidAssignment)

	empty := Assignment{Round: 1, Tables: []Table{{Number: 1, Players: [4]int{1, 0, 3, 4}}}}
	assert.ErrorIs(t, Validate(empty), ErrInvalidAssignment)
}

func TestSeatsAndTablesFromSeatsRoundTrip(t *testing.T) {
	a, err := FirstRound(roster(12), newRand(7))
	require.NoError(t, err)

	seats := a.Seats()
	require.Len(t, seats, 12)
	assert.Equal(t, models.PositionA, seats[0].Position)
	assert.Equal(t, models.PositionD, seats[3].Position)

	tables, err := TablesFromSeats(seats)
	require.NoError(t, err)
	assert.Equal(t, a.Tables, tables)
}

func TestTablesFromSeatsRejectsIncompleteTable(t *testing.T) {
	seats := []models.Seat{
		{Round: 1, TableNo: 1, Position: models.PositionA, PlayerID: 1},
		{Round: 1, TableNo: 1, Position: models.PositionB, PlayerID: 2},
	}
	_, err := TablesFromSeats(seats)
	assert.ErrorIs(t, err, ErrInvalidAssignment)
}
