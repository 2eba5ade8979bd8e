package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trentd187/domino-tournament/internal/database"
	"github.com/trentd187/domino-tournament/internal/models"
	"github.com/trentd187/domino-tournament/internal/seating"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(database.Target{
		Dialect:     database.DialectSQLite,
		Path:        filepath.Join(t.TempDir(), "torneo.db"),
		BusyTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return New(db)
}

func registerPlayers(t *testing.T, s *Store, n int) []int {
	t.Helper()
	ids := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		p := models.Player{
			Name:       fmt.Sprintf("Player%d", i),
			Surname:    "Test",
			NationalID: fmt.Sprintf("V-%08d", i),
			Fee:        5000,
		}
		require.NoError(t, s.CreatePlayer(context.Background(), &p, 100))
		ids = append(ids, p.ID)
	}
	return ids
}

// twoTables seats players 1..8 at two tables of round.
func twoTables(round int) seating.Assignment {
	return seating.Assignment{Round: round, Tables: []seating.Table{
		{Number: 1, Players: [4]int{1, 4, 7, 2}},
		{Number: 2, Players: [4]int{3, 5, 6, 8}},
	}}
}

func TestCreatePlayerAddsStatsRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ids := registerPlayers(t, s, 3)
	assert.Equal(t, []int{1, 2, 3}, ids)

	stats, err := s.StatsByPlayer(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, stats, 3)
	assert.Zero(t, stats[2].Effectiveness)

	count, err := s.CountPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	players, err := s.ListPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, players, 3)
	assert.Equal(t, "Player1 Test", players[0].FullName())
}

func TestCreatePlayerRosterFull(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	registerPlayers(t, s, 2)

	p := models.Player{Name: "Late", Surname: "Comer", NationalID: "X"}
	err := s.CreatePlayer(ctx, &p, 2)
	assert.ErrorIs(t, err, ErrRosterFull)

	count, err := s.CountPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCreatePlayerKeepsWaivedFee(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := models.Player{Name: "Ana", Surname: "Pérez", NationalID: "V-1", Fee: 0}
	require.NoError(t, s.CreatePlayer(ctx, &p, 10))
	assert.Zero(t, p.Fee)

	got, err := s.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Fee)
}

func TestLockedWriterGivesUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "torneo.db")
	target := database.Target{Dialect: database.DialectSQLite, Path: path, BusyTimeout: 300 * time.Millisecond}

	first, err := database.Open(target)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(first) })
	registerPlayers(t, New(first), 8)

	second, err := database.Connect(target)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(second) })

	// Another desk holds the write lock.
	tx := first.Begin()
	require.NoError(t, tx.Error)
	require.NoError(t, tx.Exec("UPDATE players SET phone = ? WHERE id = 1", "555").Error)
	t.Cleanup(func() { tx.Rollback() })

	start := time.Now()
	err = New(second).SaveRound(context.Background(), twoTables(1))
	waited := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "save round 1")
	assert.GreaterOrEqual(t, waited, 250*time.Millisecond)
	assert.Less(t, waited, 5*time.Second)
}

func TestGetPlayerNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetPlayer(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRoundReplacesSeating(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	registerPlayers(t, s, 8)

	require.NoError(t, s.SaveRound(ctx, twoTables(1)))
	seats, err := s.Seats(ctx, 1)
	require.NoError(t, err)
	require.Len(t, seats, 8)
	assert.Equal(t, 1, seats[0].PlayerID)
	require.NotNil(t, seats[0].Player)
	assert.Equal(t, "Player1", seats[0].Player.Name)

	state, err := s.TableStatus(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.TableInProgress, state)

	// Regenerate with one table only: the old table 2 disappears with its status.
	require.NoError(t, s.SaveRound(ctx, seating.Assignment{Round: 1, Tables: []seating.Table{
		{Number: 1, Players: [4]int{8, 7, 6, 5}},
	}}))
	seats, err = s.Seats(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, seats, 4)
	_, err = s.TableStatus(ctx, 1, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	rounds, err := s.Rounds(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, rounds)
}

func TestSaveRoundRejectsInvalidAssignment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	registerPlayers(t, s, 8)
	require.NoError(t, s.SaveRound(ctx, twoTables(1)))

	bad := seating.Assignment{Round: 1, Tables: []seating.Table{
		{Number: 1, Players: [4]int{1, 2, 3, 4}},
		{Number: 2, Players: [4]int{5, 6, 7, 1}},
	}}
	assert.ErrorIs(t, s.SaveRound(ctx, bad), seating.ErrInvalidAssignment)

	// The earlier seating is untouched.
	seats, err := s.Seats(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, seats, 8)
}

func TestSaveRoundRefusesScoredRound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	registerPlayers(t, s, 8)
	require.NoError(t, s.SaveRound(ctx, twoTables(1)))

	require.NoError(t, s.SaveTableResult(ctx, models.TableResult{
		Round: 1, TableNo: 2, PointsSide1: 10, PointsSide2: 20, Winner: models.WinnerSide2,
	}))
	scored, err := s.RoundHasScores(ctx, 1)
	require.NoError(t, err)
	assert.True(t, scored)

	err = s.SaveRound(ctx, twoTables(1))
	assert.ErrorIs(t, err, ErrRoundHasScores)

	result, err := s.TableResult(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 20, result.PointsSide2)
}

func TestSaveTableResultUpsertsAndFinishes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	registerPlayers(t, s, 8)
	require.NoError(t, s.SaveRound(ctx, twoTables(1)))

	require.NoError(t, s.SaveTableResult(ctx, models.TableResult{
		Round: 1, TableNo: 1, PointsSide1: 100, PointsSide2: 50, Winner: models.WinnerSide1,
	}))
	require.NoError(t, s.SaveTableResult(ctx, models.TableResult{
		Round: 1, TableNo: 1, PointsSide1: 70, PointsSide2: 70, Winner: models.WinnerDraw,
	}))

	results, err := s.AllResults(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.WinnerDraw, results[0].Winner)
	assert.Equal(t, 70, results[0].PointsSide1)

	state, err := s.TableStatus(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TableFinished, state)

	err = s.SaveTableResult(ctx, models.TableResult{Round: 1, TableNo: 9, Winner: models.WinnerDraw})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplacePlayerScores(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	registerPlayers(t, s, 8)
	require.NoError(t, s.SaveRound(ctx, twoTables(1)))

	rows := func(winner models.Partnership, base int) []models.PlayerRoundScore {
		out := []models.PlayerRoundScore{}
		for i, pos := range models.Positions {
			out = append(out, models.PlayerRoundScore{
				Round: 1, TableNo: 1, PlayerID: []int{1, 4, 7, 2}[i], Position: pos,
				BasePoints: base, FinalPoints: base, WinningPartnership: winner,
			})
		}
		return out
	}

	require.NoError(t, s.ReplacePlayerScores(ctx, 1, 1, rows(models.PartnershipAC, 30)))
	require.NoError(t, s.ReplacePlayerScores(ctx, 1, 1, rows(models.PartnershipBD, 45)))

	got, err := s.PlayerScores(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, models.PositionA, got[0].Position)
	for _, r := range got {
		assert.Equal(t, 45, r.FinalPoints)
		assert.Equal(t, models.PartnershipBD, r.WinningPartnership)
	}

	all, err := s.AllScores(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	state, err := s.TableStatus(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TableFinished, state)

	assert.ErrorIs(t, s.ReplacePlayerScores(ctx, 2, 1, nil), ErrNotFound)
}

func TestSetTableStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	registerPlayers(t, s, 8)
	require.NoError(t, s.SaveRound(ctx, twoTables(1)))

	require.NoError(t, s.SetTableStatus(ctx, 1, 2, models.TableFinished))
	statuses, err := s.TableStatuses(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[int]models.TableState{1: models.TableInProgress, 2: models.TableFinished}, statuses)

	assert.ErrorIs(t, s.SetTableStatus(ctx, 1, 3, models.TableFinished), ErrNotFound)
}

func TestAdjustments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	registerPlayers(t, s, 2)

	require.NoError(t, s.AddAdjustment(ctx, &models.PlayerAdjustment{PlayerID: 1, DeltaPoints: -10, Reason: "late"}))
	require.NoError(t, s.AddAdjustment(ctx, &models.PlayerAdjustment{PlayerID: 1, DeltaPoints: 25, Reason: "bonus"}))
	require.NoError(t, s.AddAdjustment(ctx, &models.PlayerAdjustment{PlayerID: 2, DeltaPoints: -5}))

	totals, err := s.AdjustmentTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 15, 2: -5}, totals)

	ledger, err := s.Adjustments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, "late", ledger[0].Reason)

	err = s.AddAdjustment(ctx, &models.PlayerAdjustment{PlayerID: 77, DeltaPoints: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceStatsAndRanking(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	registerPlayers(t, s, 3)

	require.NoError(t, s.ReplaceStats(ctx, []models.PlayerStats{
		{PlayerID: 1, GamesWon: 0, Points: 40, Effectiveness: 40, Rank: 2},
		{PlayerID: 2, GamesWon: 1, Points: 60, Effectiveness: 160, Rank: 1},
		{PlayerID: 3, GamesWon: 0, Points: 40, Effectiveness: 40, Rank: 3},
	}))

	rows, err := s.Ranking(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, RankingRow{PlayerID: 2, Name: "Player2", Surname: "Test", GamesWon: 1, Points: 60, Effectiveness: 160, Rank: 1}, rows[0])
	assert.Equal(t, 1, rows[1].PlayerID)
	assert.Equal(t, 3, rows[2].PlayerID)
}
