package draw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkWriterOffset(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 2, 3)

	cw.WriteAt(1, 1, "hi")
	assert.Empty(t, out.String(), "nothing written before Flush")

	require.NoError(t, cw.Flush())
	assert.Equal(t, "\033[4;3Hhi", out.String())
}

func TestChunkWriterLargeFrame(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 0, 0)
	big := strings.Repeat("x", maxChunkSize*3+7)

	cw.WriteString(big)
	require.NoError(t, cw.Flush())
	assert.Equal(t, big, out.String())

	require.NoError(t, cw.Flush())
	assert.Equal(t, len(big), out.Len(), "buffer reset after flush")
}

func TestClampTermSize(t *testing.T) {
	w, h, oc, or := ClampTermSize(200, 60, 160, 50)
	assert.Equal(t, []int{160, 50, 20, 5}, []int{w, h, oc, or})

	w, h, oc, or = ClampTermSize(80, 24, 160, 50)
	assert.Equal(t, []int{80, 24, 0, 0}, []int{w, h, oc, or})
}
