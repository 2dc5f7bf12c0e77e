package accuracy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRate(t *testing.T) {
	assert.Equal(t, 0.0, Rate(0, 0))
	assert.Equal(t, 0.0, Rate(0, 3))
	assert.Equal(t, 100.0, Rate(5, 5))
	assert.Equal(t, 50.0, Rate(1, 2))
	// dibulatkan 2 desimal
	assert.Equal(t, 33.33, Rate(1, 3))
	assert.Equal(t, 66.67, Rate(2, 3))
}
