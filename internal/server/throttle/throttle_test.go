package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newThrottle(t *testing.T, max int, window time.Duration) (*LoginThrottle, *time.Time) {
	t.Helper()
	th, err := New(context.Background(), max, window)
	require.NoError(t, err)
	t.Cleanup(func() { _ = th.Close() })

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	th.now = func() time.Time { return now }
	return th, &now
}

func TestThrottle_BlocksAfterMaxFailures(t *testing.T) {
	th, _ := newThrottle(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, th.Allowed("1.2.3.4", "a@x.com"))
		th.Fail("1.2.3.4", "a@x.com")
	}
	assert.False(t, th.Allowed("1.2.3.4", "a@x.com"))

	// other pairs are unaffected
	assert.True(t, th.Allowed("1.2.3.4", "b@x.com"))
	assert.True(t, th.Allowed("5.6.7.8", "a@x.com"))
}

func TestThrottle_WindowElapses(t *testing.T) {
	th, now := newThrottle(t, 2, time.Minute)

	th.Fail("ip", "a@x.com")
	th.Fail("ip", "a@x.com")
	assert.False(t, th.Allowed("ip", "a@x.com"))

	*now = now.Add(30 * time.Second)
	assert.False(t, th.Allowed("ip", "a@x.com"))

	*now = now.Add(31 * time.Second)
	assert.True(t, th.Allowed("ip", "a@x.com"))
}

func TestThrottle_Reset(t *testing.T) {
	th, _ := newThrottle(t, 1, time.Minute)

	th.Fail("ip", "a@x.com")
	require.False(t, th.Allowed("ip", "a@x.com"))

	th.Reset("ip", "a@x.com")
	assert.True(t, th.Allowed("ip", "a@x.com"))
}

func TestThrottle_Disabled(t *testing.T) {
	th, _ := newThrottle(t, 0, time.Minute)
	for i := 0; i < 10; i++ {
		th.Fail("ip", "a@x.com")
	}
	assert.True(t, th.Allowed("ip", "a@x.com"))

	var nilThrottle *LoginThrottle
	assert.True(t, nilThrottle.Allowed("ip", "a@x.com"))
	nilThrottle.Fail("ip", "a@x.com")
	assert.NoError(t, nilThrottle.Close())
}
