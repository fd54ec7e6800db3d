package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/autocheckhq/autocheck/internal/flagx"
	"github.com/autocheckhq/autocheck/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "15s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	LocalDBPath             string         `json:"local_db_path"`
	StorageQuotaBytes       int64          `json:"storage_quota_bytes"`
	RemoteBackend           string         `json:"remote_backend"`
	DefaultTenant           string         `json:"default_tenant"`
	FirebaseProjectID       string         `json:"firebase_project_id"`
	FirebaseCredentialsFile string         `json:"firebase_credentials_file"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	S3AccessKey             string         `json:"s3_access_key"`
	S3SecretKey             string         `json:"s3_secret_key"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
	SyncTimeout             timex.Duration `json:"sync_timeout"`
	SyncOnStart             *bool          `json:"sync_on_start"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies known fields into the provided Config.
//   - Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
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
	if jc.StorageQuotaBytes > 0 {
		cfg.StorageQuotaBytes = jc.StorageQuotaBytes
	}
	if jc.RemoteBackend != "" {
		cfg.RemoteBackend = jc.RemoteBackend
	}
	if jc.DefaultTenant != "" {
		cfg.DefaultTenant = jc.DefaultTenant
	}
	if jc.FirebaseProjectID != "" {
		cfg.FirebaseProjectID = jc.FirebaseProjectID
	}
	if jc.FirebaseCredentialsFile != "" {
		cfg.FirebaseCredentialsFile = jc.FirebaseCredentialsFile
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.S3AccessKey != "" {
		cfg.S3AccessKey = jc.S3AccessKey
	}
	if jc.S3SecretKey != "" {
		cfg.S3SecretKey = jc.S3SecretKey
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3BaseEndpoint != "" {
		cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	}
	if jc.SyncTimeout.Duration > 0 {
		cfg.SyncTimeout = time.Duration(jc.SyncTimeout.Duration)
	}
	if jc.SyncOnStart != nil {
		cfg.SyncOnStart = *jc.SyncOnStart
	}
}
