package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsageCost(t *testing.T) {
	u := Usage{Model: "claude-sonnet-4-20250514", InputTokens: 1000, OutputTokens: 1000}
	assert.Equal(t, int64(2000), u.TotalTokens())
	// (1000×0.003 + 1000×0.015) / 1000
	assert.InDelta(t, 0.018, u.CostUSD(), 1e-9)
}

func TestUsageCostZero(t *testing.T) {
	assert.Equal(t, 0.0, Usage{}.CostUSD())
}

func TestResultParseFailed(t *testing.T) {
	assert.True(t, Result{Raw: "not json"}.ParseFailed())
	assert.False(t, Result{Match: &Match{DiagramID: "5"}}.ParseFailed())
}
