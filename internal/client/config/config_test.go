package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "studykeeper.db", cfg.LocalDBPath)
	assert.Equal(t, "127.0.0.1:50051", cfg.ServerEndpointAddr)
	assert.Equal(t, 5*time.Second, cfg.SyncInterval)
	assert.Equal(t, 100, cfg.DrainBatchSize)
	assert.Equal(t, 4, cfg.SyncWorkers)
	assert.Equal(t, 10, cfg.MaxAttempts)
	assert.GreaterOrEqual(t, cfg.BackoffCap, cfg.BackoffBase)
}

func TestLoadConfig_DefaultsOnly(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	assert.Equal(t, "studykeeper.db", cfg.LocalDBPath)
	assert.Equal(t, 5*time.Second, cfg.SyncInterval)
}
