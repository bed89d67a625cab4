// Package config loads runtime configuration for the StudyKeeper client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the sync server gRPC endpoint
//	-d string   path of the local database file
//	-u string   owner id stamped on new records
//	-i int      sync interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "local_db_path": "studykeeper.db",
//	  "sync_interval": "5s",
//	  "max_attempts": 10
//	}
//
// This package does not read environment variables; use the JSON file or
// flags to configure values.
package config
