package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitKeywords(t *testing.T) {
	assert.Equal(t, []string{"교차로", "신호위반"}, SplitKeywords("교차로, 신호위반"))
	assert.Equal(t, []string{"좌회전", "직진"}, SplitKeywords("좌회전 직진"))
	// token satu rune dibuang
	assert.Equal(t, []string{"교차로"}, SplitKeywords("a 교차로"))
	assert.Empty(t, SplitKeywords(""))
	assert.Empty(t, SplitKeywords("  ,  \n"))
}
