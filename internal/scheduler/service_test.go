package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oactree/internal/common"
)

func TestRegisterValidatesCronSpec(t *testing.T) {
	s := NewService(func(file string) error { return nil }, arbor.NewLogger())

	require.NoError(t, s.Register(common.ScheduleConfig{
		Name:     "nightly",
		File:     "check.xml",
		Schedule: "0 2 * * *",
	}))
	assert.Error(t, s.Register(common.ScheduleConfig{
		Name:     "broken",
		File:     "check.xml",
		Schedule: "not a cron spec",
	}))
	assert.Error(t, s.Register(common.ScheduleConfig{
		Name:     "nightly",
		File:     "other.xml",
		Schedule: "0 3 * * *",
	}), "duplicate names rejected")

	assert.Equal(t, []string{"nightly"}, s.Entries())
}

func TestStartStop(t *testing.T) {
	s := NewService(func(file string) error { return nil }, arbor.NewLogger())
	require.NoError(t, s.Register(common.ScheduleConfig{
		Name:     "hourly",
		File:     "check.xml",
		Schedule: "@hourly",
	}))
	s.Start()
	s.Start() // idempotent
	s.Stop()
	s.Stop() // idempotent
}
