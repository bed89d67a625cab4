package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dkazakevich/studykeeper/internal/flagx"
	"github.com/dkazakevich/studykeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config (which uses time.Duration).
type JsonConfig struct {
	LocalDBPath         string         `json:"local_db_path"`
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OwnerID             string         `json:"owner_id"`
	SyncInterval        timex.Duration `json:"sync_interval"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	DrainBatchSize      int            `json:"drain_batch_size"`
	SyncWorkers         int            `json:"sync_workers"`
	CallTimeout         timex.Duration `json:"call_timeout"`
	BackoffBase         timex.Duration `json:"backoff_base"`
	BackoffCap          timex.Duration `json:"backoff_cap"`
	MaxAttempts         int            `json:"max_attempts"`
}

// parseJson overlays Config with values from a JSON file selected via the -c
// or -config flags. Absent file means no overlay; read or unmarshal errors
// panic, matching the fail-fast startup path.
//
// Zero values in the file leave the corresponding Config field untouched, so
// a partial JSON file only overrides what it names.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.LocalDBPath != "" {
		cfg.LocalDBPath = jc.LocalDBPath
	}
	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.OwnerID != "" {
		cfg.OwnerID = jc.OwnerID
	}
	if jc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.DrainBatchSize != 0 {
		cfg.DrainBatchSize = jc.DrainBatchSize
	}
	if jc.SyncWorkers != 0 {
		cfg.SyncWorkers = jc.SyncWorkers
	}
	if jc.CallTimeout.Duration != 0 {
		cfg.CallTimeout = time.Duration(jc.CallTimeout.Duration)
	}
	if jc.BackoffBase.Duration != 0 {
		cfg.BackoffBase = time.Duration(jc.BackoffBase.Duration)
	}
	if jc.BackoffCap.Duration != 0 {
		cfg.BackoffCap = time.Duration(jc.BackoffCap.Duration)
	}
	if jc.MaxAttempts != 0 {
		cfg.MaxAttempts = jc.MaxAttempts
	}
}
