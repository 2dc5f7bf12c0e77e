package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashIP(t *testing.T) {
	h := HashIP("203.0.113.7", "mdlabs")

	assert.Len(t, h, 16)
	// deterministic untuk (ip, salt) yang sama
	assert.Equal(t, h, HashIP("203.0.113.7", "mdlabs"))
	// salt beda → hash beda
	assert.NotEqual(t, h, HashIP("203.0.113.7", "other-salt"))
	assert.NotEqual(t, h, HashIP("203.0.113.8", "mdlabs"))
}

func TestHashIPEmpty(t *testing.T) {
	assert.Equal(t, "", HashIP("", "mdlabs"))
}

func TestTruncateRunes(t *testing.T) {
	// cap dihitung per rune, bukan per byte. 6 karakter Hangul = 18 byte.
	korean := "사고가났습니다"
	assert.Equal(t, "사고가났습", Truncate(korean, 5))
	assert.Equal(t, korean, Truncate(korean, 100))

	long := strings.Repeat("a", MaxInputText+500)
	assert.Len(t, Truncate(long, MaxInputText), MaxInputText)
}

func TestTruncateNoop(t *testing.T) {
	assert.Equal(t, "", Truncate("", 10))
	assert.Equal(t, "abc", Truncate("abc", 3))
}
