package ranking

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trentd187/domino-tournament/internal/models"
)

func TestEffectiveness(t *testing.T) {
	assert.Equal(t, 160, Effectiveness(1, 60, DefaultWinWeight))
	assert.Equal(t, 40, Effectiveness(0, 40, DefaultWinWeight))
	assert.Equal(t, 350, Effectiveness(3, 50, 100))
	assert.Equal(t, -20, Effectiveness(0, -20, 100))
	assert.Equal(t, 15, Effectiveness(1, 5, 10))
}

func scoreRow(round, table, player int, pos models.Position, final int, winner models.Partnership) models.PlayerRoundScore {
	return models.PlayerRoundScore{
		Round: round, TableNo: table, PlayerID: player, Position: pos,
		BasePoints: final, FinalPoints: final, WinningPartnership: winner,
	}
}

// Eight players, table 1 = {1:A, 4:B, 7:C, 2:D}, AC wins; player 7 took a 10 point penalty.
func exampleInput() Input {
	return Input{
		PlayerIDs: []int{1, 2, 3, 4, 5, 6, 7, 8},
		Scores: []models.PlayerRoundScore{
			scoreRow(1, 1, 1, models.PositionA, 60, models.PartnershipAC),
			scoreRow(1, 1, 4, models.PositionB, 40, models.PartnershipAC),
			scoreRow(1, 1, 7, models.PositionC, 50, models.PartnershipAC),
			scoreRow(1, 1, 2, models.PositionD, 40, models.PartnershipAC),
		},
	}
}

func TestComputeExampleScenario(t *testing.T) {
	got := Compute(exampleInput(), DefaultWinWeight)

	want := []Standing{
		{PlayerID: 1, GamesWon: 1, Points: 60, Effectiveness: 160, Rank: 1},
		{PlayerID: 7, GamesWon: 1, Points: 50, Effectiveness: 150, Rank: 2},
		{PlayerID: 2, GamesWon: 0, Points: 40, Effectiveness: 40, Rank: 3},
		{PlayerID: 4, GamesWon: 0, Points: 40, Effectiveness: 40, Rank: 4},
		{PlayerID: 3, Rank: 5},
		{PlayerID: 5, Rank: 6},
		{PlayerID: 6, Rank: 7},
		{PlayerID: 8, Rank: 8},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("standings mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	in := exampleInput()
	first := Compute(in, DefaultWinWeight)
	second := Compute(in, DefaultWinWeight)
	assert.Empty(t, cmp.Diff(first, second))
}

func TestSortTieBreaks(t *testing.T) {
	standings := []Standing{
		{PlayerID: 9, GamesWon: 0, Points: 200, Effectiveness: 200},
		{PlayerID: 3, GamesWon: 1, Points: 100, Effectiveness: 200},
		{PlayerID: 5, GamesWon: 1, Points: 100, Effectiveness: 200},
		{PlayerID: 1, GamesWon: 2, Points: 10, Effectiveness: 210},
	}
	Sort(standings)

	ids := make([]int, len(standings))
	for i, s := range standings {
		ids[i] = s.PlayerID
	}
	// Same E: higher P first; same E and P: higher G; then lower id.
	assert.Equal(t, []int{1, 9, 3, 5}, ids)
}

func TestLegacyResultsAttributeBothPartners(t *testing.T) {
	seats := []models.Seat{
		{Round: 1, TableNo: 1, Position: models.PositionA, PlayerID: 1},
		{Round: 1, TableNo: 1, Position: models.PositionB, PlayerID: 2},
		{Round: 1, TableNo: 1, Position: models.PositionC, PlayerID: 3},
		{Round: 1, TableNo: 1, Position: models.PositionD, PlayerID: 4},
		{Round: 1, TableNo: 2, Position: models.PositionA, PlayerID: 5},
		{Round: 1, TableNo: 2, Position: models.PositionB, PlayerID: 6},
		{Round: 1, TableNo: 2, Position: models.PositionC, PlayerID: 7},
		{Round: 1, TableNo: 2, Position: models.PositionD, PlayerID: 8},
	}
	results := []models.TableResult{
		{Round: 1, TableNo: 1, PointsSide1: 30, PointsSide2: 80, Winner: models.WinnerSide2},
		{Round: 1, TableNo: 2, PointsSide1: 50, PointsSide2: 50, Winner: models.WinnerDraw},
	}

	got := Compute(Input{PlayerIDs: []int{1, 2, 3, 4, 5, 6, 7, 8}, Results: results, Seats: seats}, 100)
	byID := map[int]Standing{}
	for _, s := range got {
		byID[s.PlayerID] = s
	}

	assert.Equal(t, Standing{PlayerID: 2, GamesWon: 1, Points: 80, Effectiveness: 180, Rank: 1}, byID[2])
	assert.Equal(t, Standing{PlayerID: 4, GamesWon: 1, Points: 80, Effectiveness: 180, Rank: 2}, byID[4])
	assert.Equal(t, 30, byID[1].Points)
	assert.Equal(t, 0, byID[3].GamesWon)
	for _, id := range []int{5, 6, 7, 8} {
		assert.Equal(t, 0, byID[id].GamesWon, "draws credit no game")
		assert.Equal(t, 50, byID[id].Points)
	}
}

func TestDetailedRowsWinOverLegacyResult(t *testing.T) {
	in := exampleInput()
	in.Seats = []models.Seat{
		{Round: 1, TableNo: 1, Position: models.PositionA, PlayerID: 1},
		{Round: 1, TableNo: 1, Position: models.PositionB, PlayerID: 4},
		{Round: 1, TableNo: 1, Position: models.PositionC, PlayerID: 7},
		{Round: 1, TableNo: 1, Position: models.PositionD, PlayerID: 2},
	}
	in.Results = []models.TableResult{
		{Round: 1, TableNo: 1, PointsSide1: 999, PointsSide2: 0, Winner: models.WinnerSide1},
	}

	got := Compute(in, DefaultWinWeight)
	require.NotEmpty(t, got)
	assert.Equal(t, 1, got[0].PlayerID)
	assert.Equal(t, 60, got[0].Points, "the aggregate row for a detailed table is ignored")
}

func TestAdjustmentsAddToPoints(t *testing.T) {
	in := exampleInput()
	in.Adjustments = map[int]int{4: -15, 3: 25, 99: 1000}

	got := Compute(in, DefaultWinWeight)
	byID := map[int]Standing{}
	for _, s := range got {
		byID[s.PlayerID] = s
	}

	assert.Equal(t, 25, byID[4].Points)
	assert.Equal(t, 25, byID[4].Effectiveness)
	assert.Equal(t, 25, byID[3].Points)
	assert.NotContains(t, byID, 99, "adjustments for unknown players are ignored")
	assert.Len(t, got, 8)
}

func TestWinWeightChangesOrder(t *testing.T) {
	in := Input{
		PlayerIDs: []int{1, 2, 3, 4},
		Scores: []models.PlayerRoundScore{
			scoreRow(1, 1, 1, models.PositionA, 10, models.PartnershipAC),
			scoreRow(1, 1, 2, models.PositionB, 90, models.PartnershipAC),
			scoreRow(1, 1, 3, models.PositionC, 10, models.PartnershipAC),
			scoreRow(1, 1, 4, models.PositionD, 90, models.PartnershipAC),
		},
	}

	assert.Equal(t, 1, Compute(in, 100)[0].PlayerID)
	assert.Equal(t, 2, Compute(in, 10)[0].PlayerID)
}

func TestStandingStats(t *testing.T) {
	s := Standing{PlayerID: 3, GamesWon: 2, Points: 70, Effectiveness: 270, Rank: 1}
	assert.Equal(t, models.PlayerStats{PlayerID: 3, GamesWon: 2, Points: 70, Effectiveness: 270, Rank: 1}, s.Stats())
}
