package collections //nolint:testpackage // Needs access to unexported fields

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	got := Apply([]int{1, 2, 3}, strconv.Itoa)

	assert.Equal(t, []string{"1", "2", "3"}, got)
}

func TestApply_Empty(t *testing.T) {
	got := Apply(nil, strconv.Itoa)

	assert.Empty(t, got)
	assert.NotNil(t, got)
}
