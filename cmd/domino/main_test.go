package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trentd187/domino-tournament/internal/models"
	"github.com/trentd187/domino-tournament/internal/tournament"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"domino"}, args...))
	return out.String(), err
}

func TestParseScoreArgs(t *testing.T) {
	got, err := parseScoreArgs([]string{"A=60", "b=40", "C=60/10", "D = 40"})
	require.NoError(t, err)
	assert.Equal(t, map[models.Position]tournament.ScoreInput{
		models.PositionA: {Base: 60},
		models.PositionB: {Base: 40},
		models.PositionC: {Base: 60, Penalty: 10},
		models.PositionD: {Base: 40},
	}, got)
}

func TestParseScoreArgsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"A60"},
		{"E=10"},
		{"A=x"},
		{"A=10/y"},
		{"A=10", "a=20"},
	} {
		_, err := parseScoreArgs(args)
		assert.Error(t, err, "args %v", args)
	}
}

func TestDemoPlayers(t *testing.T) {
	a := demoPlayers(50, 42)
	b := demoPlayers(50, 42)
	require.Len(t, a, 50)
	assert.Equal(t, a, b, "same seed gives the same roster")

	seen := map[string]bool{}
	for _, p := range a {
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Surname)
		assert.Len(t, p.NationalID, 8)
		assert.False(t, seen[p.NationalID], "duplicate national id %s", p.NationalID)
		seen[p.NationalID] = true
	}
}

func TestTournamentFromTheCommandLine(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "torneo.db")

	out, err := runCLI(t, "--db", db, "seed", "--count", "8", "--seed", "7")
	require.NoError(t, err, out)
	assert.Contains(t, out, "registered 8 demo players")

	out, err = runCLI(t, "--db", db, "seed", "--count", "8")
	require.NoError(t, err, out)
	assert.Contains(t, out, "roster already has 8 players")

	out, err = runCLI(t, "--db", db, "round", "generate", "--round", "1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "TABLE")

	out, err = runCLI(t, "--db", db, "score", "table", "--round", "1", "--table", "1", "--side1", "120", "--side2", "80")
	require.NoError(t, err, out)
	assert.Contains(t, out, "winner side1")

	out, err = runCLI(t, "--db", db, "score", "players", "--round", "1", "--table", "2", "--winner", "bd",
		"A=10", "B=50", "C=20", "D=30/40")
	require.NoError(t, err, out)
	assert.Contains(t, out, "FINAL")

	out, err = runCLI(t, "--db", db, "round", "status", "--round", "1", "--table", "2")
	require.NoError(t, err, out)
	assert.Contains(t, out, "finished")

	out, err = runCLI(t, "--db", db, "ranking")
	require.NoError(t, err, out)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 9, "header plus eight players")

	xlsx := filepath.Join(dir, "ranking.xlsx")
	out, err = runCLI(t, "--db", db, "export", "ranking", "--out", xlsx)
	require.NoError(t, err, out)
	info, err := os.Stat(xlsx)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// Table 1 has a result, so round 1 is frozen.
	_, err = runCLI(t, "--db", db, "round", "generate", "--round", "1")
	require.Error(t, err)
	assert.Equal(t, tournament.KindConflict, tournament.KindOf(err))
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "mesa-de-control")
	out, err := runCLI(t, "--db", filepath.Join(t.TempDir(), "t.db"), "token", "--role", "organizer")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "."), 3)

	_, err = runCLI(t, "token", "--role", "referee")
	assert.Error(t, err)
}
