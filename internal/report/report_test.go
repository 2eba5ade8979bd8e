package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trentd187/domino-tournament/internal/models"
	"github.com/trentd187/domino-tournament/internal/store"
	"github.com/trentd187/domino-tournament/internal/tournament"
)

func reopen(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	data, err := Bytes(f)
	require.NoError(t, err)
	out, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = out.Close() })
	return out
}

func TestAssignmentWorkbook(t *testing.T) {
	f, err := AssignmentWorkbook("Open de Verano", 2, []tournament.SeatListEntry{
		{PlayerID: 1, Name: "Ana", Surname: "Pérez", Table: 3, Position: models.PositionB},
		{PlayerID: 2, Name: "Luis", Surname: "Díaz", Table: 1, Position: models.PositionA},
	})
	require.NoError(t, err)

	wb := reopen(t, f)
	assert.Equal(t, []string{"Round 2"}, wb.GetSheetList())

	rows, err := wb.GetRows("Round 2")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Open de Verano - Round 2", rows[0][0])
	assert.Equal(t, []string{"ID", "Player", "Table"}, rows[1])
	assert.Equal(t, []string{"1", "Ana Pérez", "3"}, rows[2])
	assert.Equal(t, []string{"2", "Luis Díaz", "1"}, rows[3])
}

func TestTableSheetsWorkbook(t *testing.T) {
	sheets := []tournament.TableSheet{
		{
			Round: 1, Table: 1, Status: models.TableFinished,
			Seats: [4]tournament.SheetSeat{
				{Position: models.PositionA, PlayerID: 1, Name: "A", Surname: "One", Effectiveness: 160, Rank: 1},
				{Position: models.PositionB, PlayerID: 4, Name: "B", Surname: "Four"},
				{Position: models.PositionC, PlayerID: 7, Name: "C", Surname: "Seven"},
				{Position: models.PositionD, PlayerID: 2, Name: "D", Surname: "Two"},
			},
			Scores: []models.PlayerRoundScore{
				{Position: models.PositionA, BasePoints: 60, FinalPoints: 60, WinningPartnership: models.PartnershipAC},
				{Position: models.PositionB, BasePoints: 40, FinalPoints: 40, WinningPartnership: models.PartnershipAC},
			},
		},
		{
			Round: 1, Table: 2, Status: models.TableFinished,
			Result: &models.TableResult{PointsSide1: 10, PointsSide2: 30, Winner: models.WinnerSide2},
		},
	}

	f, err := TableSheetsWorkbook("Torneo", 1, sheets)
	require.NoError(t, err)
	wb := reopen(t, f)
	assert.Equal(t, []string{"Table 1", "Table 2"}, wb.GetSheetList())

	rows, err := wb.GetRows("Table 1")
	require.NoError(t, err)
	assert.Equal(t, "Torneo - Round 1 - Table 1", rows[0][0])
	assert.Equal(t, []string{"Status", "finished"}, rows[1])
	assert.Equal(t, []string{"A", "1", "A One", "", "0", "0", "160", "1"}, rows[3])
	assert.Equal(t, []string{"A", "60", "0", "60", "yes"}, rows[9])
	assert.Equal(t, []string{"B", "40", "0", "40", "no"}, rows[10])

	rows, err = wb.GetRows("Table 2")
	require.NoError(t, err)
	assert.Equal(t, []string{"Winner", "side2"}, rows[len(rows)-1])
}

func TestRankingWorkbook(t *testing.T) {
	f, err := RankingWorkbook("Torneo", []store.RankingRow{
		{PlayerID: 1, Name: "Ana", Surname: "Pérez", GamesWon: 1, Points: 60, Effectiveness: 160, Rank: 1},
		{PlayerID: 7, Name: "Eva", Surname: "Ruiz", GamesWon: 1, Points: 50, Effectiveness: 150, Rank: 2},
	})
	require.NoError(t, err)
	wb := reopen(t, f)

	rows, err := wb.GetRows("Ranking")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"R", "ID", "Player", "G", "P", "E"}, rows[1])
	assert.Equal(t, []string{"2", "7", "Eva Ruiz", "1", "50", "150"}, rows[3])
}

func TestEmptyRoundStillProducesWorkbook(t *testing.T) {
	f, err := TableSheetsWorkbook("Torneo", 3, nil)
	require.NoError(t, err)
	wb := reopen(t, f)
	assert.Equal(t, []string{"Round 3"}, wb.GetSheetList())
}
