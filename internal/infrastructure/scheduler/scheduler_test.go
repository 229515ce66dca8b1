package scheduler

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterReplacesExistingJob(t *testing.T) {
	s := NewCronScheduler(zerolog.Nop())

	require.NoError(t, s.Register(1, "00 21 * * *", func() {}))
	require.NoError(t, s.Register(1, "30 08 * * *", func() {}))

	assert.Equal(t, 1, s.JobCount())
}

func TestRegisterSeparateUsers(t *testing.T) {
	s := NewCronScheduler(zerolog.Nop())

	require.NoError(t, s.Register(1, "00 21 * * *", func() {}))
	require.NoError(t, s.Register(2, "00 21 * * *", func() {}))

	assert.Equal(t, 2, s.JobCount())
}

func TestRegisterInvalidSpec(t *testing.T) {
	s := NewCronScheduler(zerolog.Nop())

	err := s.Register(1, "not a cron spec", func() {})
	require.Error(t, err)
	assert.Equal(t, 0, s.JobCount())
}

func TestUnregister(t *testing.T) {
	s := NewCronScheduler(zerolog.Nop())

	require.NoError(t, s.Register(1, "00 21 * * *", func() {}))
	s.Unregister(1)
	s.Unregister(1) // second call is a no-op

	assert.Equal(t, 0, s.JobCount())
}
