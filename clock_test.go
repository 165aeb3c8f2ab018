// FILE: clock_test.go
package dlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockAppendTime(t *testing.T) {
	var c Clock
	ts := time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC)

	fine := string(c.AppendTime(ts, nil))
	assert.Equal(t, "2025-03-14T09:26:53.589793+0000", fine)

	c.Coarsen()
	coarse := string(c.AppendTime(ts, nil))
	assert.Equal(t, "2025-03-14T09:26:53.589+0000", coarse)

	c.Refine()
	assert.Equal(t, fine, string(c.AppendTime(ts, nil)))
}

func TestClockAppendTimeRoundTrip(t *testing.T) {
	var c Clock
	now := c.Now()

	parsed, err := time.Parse(fineTimeFormat, string(c.AppendTime(now, nil)))
	require.NoError(t, err)
	assert.WithinDuration(t, now, parsed, time.Microsecond)
}

func TestClockAppendsToExisting(t *testing.T) {
	var c Clock
	buf := []byte("prefix ")
	out := c.AppendTime(c.Now(), buf)
	assert.Equal(t, "prefix ", string(out[:7]))
	assert.Greater(t, len(out), len(buf))
}
