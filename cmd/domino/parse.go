package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/trentd187/domino-tournament/internal/models"
	"github.com/trentd187/domino-tournament/internal/tournament"
)

// parseScoreArgs reads "POS=BASE" or "POS=BASE/PENALTY" arguments, e.g. "A=60" "C=60/10".
func parseScoreArgs(args []string) (map[models.Position]tournament.ScoreInput, error) {
	scores := make(map[models.Position]tournament.ScoreInput, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("score %q: want POS=BASE or POS=BASE/PENALTY", arg)
		}
		pos := models.Position(strings.ToUpper(strings.TrimSpace(key)))
		if !pos.Valid() {
			return nil, fmt.Errorf("score %q: position must be A, B, C or D", arg)
		}
		if _, dup := scores[pos]; dup {
			return nil, fmt.Errorf("position %s given twice", pos)
		}

		var in tournament.ScoreInput
		base, penalty, hasPenalty := strings.Cut(value, "/")
		n, err := strconv.Atoi(strings.TrimSpace(base))
		if err != nil {
			return nil, fmt.Errorf("score %q: invalid base points: %w", arg, err)
		}
		in.Base = n
		if hasPenalty {
			n, err := strconv.Atoi(strings.TrimSpace(penalty))
			if err != nil {
				return nil, fmt.Errorf("score %q: invalid penalty: %w", arg, err)
			}
			in.Penalty = n
		}
		scores[pos] = in
	}
	return scores, nil
}

// demoPlayers builds n fake registrations with distinct national ids. The same seed gives
// the same roster.
func demoPlayers(n int, seed uint64) []tournament.PlayerInput {
	f := gofakeit.New(seed)
	seen := make(map[string]bool, n)
	out := make([]tournament.PlayerInput, 0, n)
	for len(out) < n {
		id := f.Numerify("########")
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, tournament.PlayerInput{
			Name:       f.FirstName(),
			Surname:    f.LastName(),
			NationalID: id,
			Phone:      f.Phone(),
		})
	}
	return out
}
