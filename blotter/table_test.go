package blotter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOrdersMarksSelection(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteOrders(&buf, sampleOrders(), "O2", time.UTC))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "INSTRUMENT")
	assert.True(t, strings.HasPrefix(lines[2], ">"), lines[2])
	assert.False(t, strings.HasPrefix(lines[1], ">"))
	assert.Contains(t, lines[1], "101.55")
}

func TestWriteTradesEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteTrades(&buf, nil, "", time.UTC))
	assert.Contains(t, buf.String(), "(no trades)")
}
