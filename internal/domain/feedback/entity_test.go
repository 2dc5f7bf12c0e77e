package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivedCorrect(t *testing.T) {
	// dalam toleransi ±10
	assert.True(t, DerivedCorrect(70, 70))
	assert.True(t, DerivedCorrect(70, 60))
	assert.True(t, DerivedCorrect(70, 80))
	// tepat di luar
	assert.False(t, DerivedCorrect(70, 59))
	assert.False(t, DerivedCorrect(70, 81))
	// simetris
	assert.True(t, DerivedCorrect(0, 10))
	assert.False(t, DerivedCorrect(100, 89))
}
