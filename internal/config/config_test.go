package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsCeilingBelowOnePair(t *testing.T) {
	cfg := &TradeConfig{Matching: Matching{MaxTransactItems: 2}}
	require.NoError(t, cfg.validate())

	cfg.Matching.MaxTransactItems = 100
	require.NoError(t, cfg.validate())

	for _, items := range []int{1, 0, -5} {
		cfg.Matching.MaxTransactItems = items
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_transact_items")
	}
}
