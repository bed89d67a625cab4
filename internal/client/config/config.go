package config

import "time"

// Config holds runtime settings for the StudyKeeper client.
//
// Fields:
//   - LocalDBPath: path of the on-device SQLite database file.
//   - ServerEndpointAddr: host:port of the sync server gRPC endpoint.
//   - OwnerID: identifier stamped on records created on this device.
//   - SyncInterval: how often the reconciler drains the mutation log.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - DrainBatchSize: max mutation-log entries read per drain pass.
//   - SyncWorkers: concurrent in-flight mutations (one per record).
//   - CallTimeout: per-RPC deadline during a drain pass.
//   - BackoffBase/BackoffCap: retry delay bounds for failed mutations.
//   - MaxAttempts: retryable failures tolerated before an entry is demoted
//     to a terminal failure.
type Config struct {
	LocalDBPath         string
	ServerEndpointAddr  string
	OwnerID             string
	SyncInterval        time.Duration
	OnlineCheckInterval time.Duration
	DrainBatchSize      int
	SyncWorkers         int
	CallTimeout         time.Duration
	BackoffBase         time.Duration
	BackoffCap          time.Duration
	MaxAttempts         int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.LocalDBPath = "studykeeper.db"
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OwnerID = "local"
	c.SyncInterval = 5 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.DrainBatchSize = 100
	c.SyncWorkers = 4
	c.CallTimeout = 10 * time.Second
	c.BackoffBase = 2 * time.Second
	c.BackoffCap = 5 * time.Minute
	c.MaxAttempts = 10
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
