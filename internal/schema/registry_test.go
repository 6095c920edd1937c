// internal/schema/registry_test.go
package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubGradeOrdinal_CoversFullGrid(t *testing.T) {
	expected := 0
	for _, letter := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		for num := 1; num <= 5; num++ {
			expected++
			code := fmt.Sprintf("%s%d", letter, num)
			assert.Equal(t, expected, SubGradeOrdinal(code), "ordinal for %s", code)
		}
	}
	assert.Equal(t, 35, expected)
}

func TestSubGradeOrdinal_UnknownCodes(t *testing.T) {
	for _, code := range []string{"", "H1", "A6", "a1", "ZZ", "A0"} {
		assert.Equal(t, 0, SubGradeOrdinal(code), "code %q", code)
	}
}

func TestColumnSchema_Indexing(t *testing.T) {
	s := NewColumnSchema([]string{"a", "b", "c"})

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"a", "b", "c"}, s.Columns())

	i, ok := s.Index("b")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = s.Index("missing")
	assert.False(t, ok)
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("d"))
}

func TestColumnSchema_CopiesInput(t *testing.T) {
	cols := []string{"a", "b"}
	s := NewColumnSchema(cols)
	cols[0] = "mutated"

	assert.Equal(t, []string{"a", "b"}, s.Columns())
}

func TestFriendlyName(t *testing.T) {
	assert.Equal(t, "FICO Credit Score", FriendlyName(ColFicoRange))
	assert.Equal(t, "Loan Purpose: Car", FriendlyName("purpose_car"))

	// Unmapped columns fall back to the raw name.
	assert.Equal(t, "purpose_wedding", FriendlyName("purpose_wedding"))
}
