package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorelineValidate(t *testing.T) {
	tests := []struct {
		name    string
		score   MatchScoreline
		wantErr bool
	}{
		{"goalless", MatchScoreline{}, false},
		{"normal", MatchScoreline{HomeHT: 1, AwayHT: 0, HomeFT: 2, AwayFT: 1}, false},
		{"negative", MatchScoreline{HomeFT: -1}, true},
		{"ht above ft", MatchScoreline{HomeHT: 2, HomeFT: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.score.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidScoreline))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestScorelineFlip(t *testing.T) {
	s := MatchScoreline{HomeHT: 1, AwayHT: 0, HomeFT: 3, AwayFT: 2}
	f := s.Flip()
	assert.Equal(t, MatchScoreline{HomeHT: 0, AwayHT: 1, HomeFT: 2, AwayFT: 3}, f)
	assert.Equal(t, s, f.Flip())
	assert.Equal(t, 5, f.TotalGoals())
}

func TestCorpusStreams(t *testing.T) {
	c := HistoricalCorpus{
		HeadToHead: []MatchScoreline{{HomeFT: 1}},
		HomeForm:   []MatchScoreline{{HomeFT: 2}, {AwayFT: 1}},
	}
	assert.Len(t, c.Stream(RoleHeadToHead), 1)
	assert.Len(t, c.Stream(RoleHomeForm), 2)
	assert.Empty(t, c.Stream(RoleAwayForm))
	assert.Equal(t, 3, c.Len())
	assert.False(t, c.IsEmpty())
	assert.True(t, HistoricalCorpus{}.IsEmpty())
}

func TestOddsSetValidate(t *testing.T) {
	assert.NoError(t, BookmakerOddsSet{MarketOver25: 1.90, MarketHomeWin: 2.1}.Validate())

	err := BookmakerOddsSet{MarketOver25: 1.0}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOdds))

	err = BookmakerOddsSet{MarketDraw: 1.005}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOdds))

	implied, ok := BookmakerOddsSet{MarketOver25: 2.0}.ImpliedProbability(MarketOver25)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, implied, 1e-12)
}
