package channels //nolint:testpackage // Needs access to unexported fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendNonBlock(t *testing.T) {
	ch := make(chan int, 1)

	require.NoError(t, SendNonBlock(ch, 1))
	assert.ErrorIs(t, SendNonBlock(ch, 2), ErrChannelFull)

	assert.Equal(t, 1, <-ch)
}

func TestSendNonBlock_ClosedChannel(t *testing.T) {
	ch := make(chan int)
	close(ch)

	assert.ErrorIs(t, SendNonBlock(ch, 1), ErrChannelClosed)
}
