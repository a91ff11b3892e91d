package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Empty(t, cfg.Scheduler.Phases)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.CacheTTL)
	assert.Equal(t, time.Hour, cfg.Exports.SignedURLTTL)
	assert.Equal(t, "./exports", cfg.Exports.StorageDir)
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.ProposalTTL)
	assert.Equal(t, 24*time.Hour, cfg.Exports.ResultTTL)
	assert.Equal(t, time.Hour, cfg.Exports.CleanupInterval)
}

func TestSchedulerOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("SCHEDULER_PHASES", "first_hour, labs ,theory,balance,free_day")
	v.Set("SCHEDULER_CACHE_TTL", "not-a-duration")
	v.Set("SCHEDULER_STRICT_AUDIT", true)
	cfg := fromViper(v)

	assert.Equal(t, []string{"first_hour", "labs", "theory", "balance", "free_day"}, cfg.Scheduler.Phases)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.CacheTTL)
	assert.True(t, cfg.Scheduler.StrictAudit)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}
