package otpgen

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WidthAndRange(t *testing.T) {
	for i := 0; i < 10000; i++ {
		code, err := New()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}

func TestNew_Distribution(t *testing.T) {
	const draws = 10000
	leading := make(map[byte]int)
	seen := make(map[string]struct{})
	for i := 0; i < draws; i++ {
		code, err := New()
		require.NoError(t, err)
		leading[code[0]]++
		seen[code] = struct{}{}
	}

	// Every leading digit 1-9 should appear, each within a loose band
	// around draws/9. This is a sanity check on uniformity, not a
	// statistical proof.
	for d := byte('1'); d <= '9'; d++ {
		assert.Greater(t, leading[d], draws/9/2, "digit %c underrepresented", d)
		assert.Less(t, leading[d], draws/9*2, "digit %c overrepresented", d)
	}

	// With 900k possible values, 10k draws should be nearly collision-free.
	assert.Greater(t, len(seen), draws*9/10)
}
