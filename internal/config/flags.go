package config

import (
	"flag"
	"os"
	"time"

	"github.com/autocheckhq/autocheck/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-f string   path of the local SQLite replica file
//	-q int      storage quota, bytes
//	-m string   remote backend: firestore, postgres or none
//	-w string   default tenant id
//	-j string   Firebase project id
//	-k string   Firebase credentials file
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-t int      startup sync timeout, seconds
//	-n          skip the replica merge on start
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-f", "-q", "-m", "-w", "-j", "-k", "-d", "-s", "-u", "-p", "-b", "-g", "-e", "-t", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.LocalDBPath, "f", config.LocalDBPath, "local replica file")
	fs.Int64Var(&config.StorageQuotaBytes, "q", config.StorageQuotaBytes, "storage quota (bytes)")
	fs.StringVar(&config.RemoteBackend, "m", config.RemoteBackend, "remote backend (firestore|postgres|none)")
	fs.StringVar(&config.DefaultTenant, "w", config.DefaultTenant, "default tenant id")
	fs.StringVar(&config.FirebaseProjectID, "j", config.FirebaseProjectID, "Firebase project id")
	fs.StringVar(&config.FirebaseCredentialsFile, "k", config.FirebaseCredentialsFile, "Firebase credentials file")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	syncTimeout := fs.Int("t", int(config.SyncTimeout.Seconds()), "startup sync timeout (in seconds)")
	noSync := fs.Bool("n", !config.SyncOnStart, "skip replica merge on start")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SyncTimeout = time.Duration(*syncTimeout) * time.Second
	config.SyncOnStart = !*noSync
}
