// Package cli is the terminal front end: it wires the local replica, the
// remote backend and the fleet service together and drives them from a
// read-eval-print loop.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/autocheckhq/autocheck/internal/blob"
	"github.com/autocheckhq/autocheck/internal/config"
	"github.com/autocheckhq/autocheck/internal/fleet"
	"github.com/autocheckhq/autocheck/internal/localstore"
	"github.com/autocheckhq/autocheck/internal/logging"
	"github.com/autocheckhq/autocheck/internal/models"
	"github.com/autocheckhq/autocheck/internal/persist"
	"github.com/autocheckhq/autocheck/internal/remote"
	"github.com/autocheckhq/autocheck/internal/replica"
	"github.com/autocheckhq/autocheck/internal/session"
	"github.com/autocheckhq/autocheck/internal/store"
)

// App owns the assembled client: one local replica, one optional remote
// backend and the services working on top of them.
type App struct {
	config  *config.Config
	kv      localstore.KV
	remote  remote.Store
	session *session.Session
	engine  *replica.Engine
	service *fleet.Service
	prop    *fleet.Propagator
	log     logging.Logger
	reader  *bufio.Reader
}

// NewApp opens the local replica, loads every persisted collection into its
// reactive store and connects the configured remote backend. Loading never
// fails on bad data: corrupt or missing collections start empty and old
// schema versions are migrated in place.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	kv, err := localstore.OpenSQLite(ctx, cfg.LocalDBPath, cfg.StorageQuotaBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to open local replica: %w", err)
	}

	vehiclesAd := persist.New[[]models.Vehicle](kv, "vehicles", log, nil)
	movementsAd := persist.New[[]models.Movement](kv, "movements", log, persist.KeepActiveMovements)
	accountsAd := persist.New[[]models.Account](kv, "accounts", log, nil)
	sessionAd := persist.New[session.State](kv, "session", log, nil)

	vehicles := store.New(vehiclesAd.Load(ctx, nil, func(v []models.Vehicle) []models.Vehicle {
		return models.MigrateVehicles(v, cfg.DefaultTenant)
	}))
	movements := store.New(movementsAd.Load(ctx, nil, func(m []models.Movement) []models.Movement {
		return models.MigrateMovements(m, cfg.DefaultTenant)
	}))
	accounts := store.New(accountsAd.Load(ctx, nil, func(a []models.Account) []models.Account {
		return models.MigrateAccounts(a, cfg.DefaultTenant)
	}))

	sess := session.New(sessionAd.Load(ctx, session.State{TenantID: cfg.DefaultTenant}, nil),
		[]byte(cfg.SecretKey))

	vehiclesAd.Attach(vehicles)
	movementsAd.Attach(movements)
	accountsAd.Attach(accounts)
	sessionAd.Attach(sess.Store())

	var rs remote.Store
	switch cfg.RemoteBackend {
	case "firestore":
		rs, err = remote.NewFirestoreStore(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	case "postgres":
		rs, err = remote.NewPostgresStore(ctx, cfg.DatabaseDSN)
	case "none":
	default:
		err = fmt.Errorf("unknown remote backend %q", cfg.RemoteBackend)
	}
	if err != nil {
		kv.Close()
		return nil, err
	}

	var blobs blob.Storage
	if rs != nil {
		s3, err := blob.NewS3Storage(ctx, blob.S3Config{
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			Bucket:       cfg.S3Bucket,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
		if err != nil {
			rs.Close()
			kv.Close()
			return nil, err
		}
		blobs = s3
	}

	prop := fleet.NewPropagator(rs, blobs, sess, log)

	return &App{
		config:  cfg,
		kv:      kv,
		remote:  rs,
		session: sess,
		engine:  replica.NewEngine(rs, sess, vehicles, movements, accounts, log),
		service: fleet.NewService(vehicles, movements, accounts, sess, prop, log),
		prop:    prop,
		log:     log.With("component", "cli"),
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.session.Authenticated()
}

func (a *App) getStatus() string {
	s := ""
	if acc := a.session.Account(); acc != nil {
		s = acc.Username + " "
	}
	if a.remote != nil {
		s += "online"
	} else {
		s += "offline"
	}
	return fmt.Sprintf("(%s)", s)
}

// Sync runs the replica merge against the remote backend. Bounded by the
// configured timeout so a dead backend never hangs the prompt.
func (a *App) Sync(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.config.SyncTimeout)
	defer cancel()

	if a.engine.SyncAll(ctx) {
		printlnFn("Replica merged.")
	} else {
		printlnFn("Merge skipped (offline or no tenant).")
	}
	return nil
}

// Run performs the startup merge and hands control to the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if a.config.SyncOnStart {
		_ = a.Sync(ctx)
	}

	a.Root(ctx)
}

// Close drains in-flight propagations and releases every backend handle.
func (a *App) Close() {
	a.prop.Wait()
	if a.remote != nil {
		if err := a.remote.Close(); err != nil {
			a.log.Error(context.Background(), "failed to close remote store", "error", err)
		}
	}
	if err := a.kv.Close(); err != nil {
		a.log.Error(context.Background(), "failed to close local replica", "error", err)
	}
}
