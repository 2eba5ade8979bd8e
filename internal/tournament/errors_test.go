package tournament

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trentd187/domino-tournament/internal/seating"
	"github.com/trentd187/domino-tournament/internal/store"
)

func TestClassify(t *testing.T) {
	disk := errors.New("disk I/O error")
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", fmt.Errorf("round 1 table 9: %w", store.ErrNotFound), KindNotFound},
		{"roster full", store.ErrRosterFull, KindConflict},
		{"scored round", fmt.Errorf("round 2: %w", store.ErrRoundHasScores), KindConflict},
		{"too few players", seating.ErrNotEnoughPlayers, KindConflict},
		{"bad assignment", fmt.Errorf("%w: player 3 seated twice", seating.ErrInvalidAssignment), KindValidation},
		{"already classified", conflictf("busy"), KindConflict},
		{"anything else", fmt.Errorf("load seats: %w", disk), KindStore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := classify(tt.err)
			require.NotNil(t, e)
			assert.Equal(t, tt.want, e.Kind)
			assert.Equal(t, tt.want == KindStore, e.Retryable())
		})
	}
	assert.Nil(t, classify(nil))
}

func TestStoreErrorsHideTheCause(t *testing.T) {
	disk := errors.New("database is locked")
	e := classify(fmt.Errorf("save round 1: %w", disk))

	assert.Equal(t, storeMessage, e.Error())
	assert.ErrorIs(t, e, disk)
	assert.Equal(t, KindStore, KindOf(e))
	assert.Equal(t, Kind(""), KindOf(disk))
}
