// engine.go wires the storage backend, bus, and chat service for CLI commands.
package assistcli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/modernweb/assist/chatservice"
	"github.com/modernweb/assist/libbus"
	"github.com/modernweb/assist/libclock"
	"github.com/modernweb/assist/libkv"
	"github.com/modernweb/assist/libtracker"
	"github.com/modernweb/assist/responder"
	"github.com/modernweb/assist/sessionstore"
	"github.com/spf13/cobra"
)

// engine bundles everything a subcommand needs to talk to the chat service.
type engine struct {
	store   *sessionstore.Store
	service chatservice.Service
	bus     libbus.Messenger
	timeout time.Duration
	json    bool
	cleanup func()
}

// openEngine resolves config and flags, opens the chosen backend, and builds the service.
func openEngine(cmd *cobra.Command) (context.Context, *engine, error) {
	cfg, configPath, err := loadLocalConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	var assistDir string
	if configPath != "" {
		assistDir = filepath.Dir(configPath)
	} else {
		cwd, _ := os.Getwd()
		assistDir = filepath.Join(cwd, ".assist")
	}

	flags := cmd.Root().Flags()
	changed := func(name string) bool { return flags.Changed(name) }

	effectiveValkey, _ := flags.GetString("valkey")
	if effectiveValkey == "" && !changed("valkey") && cfg.ValkeyAddr != "" {
		effectiveValkey = cfg.ValkeyAddr
	}

	effectivePostgres, _ := flags.GetString("postgres")
	if effectivePostgres == "" && !changed("postgres") && cfg.PostgresDSN != "" {
		effectivePostgres = cfg.PostgresDSN
	}

	effectiveDB, _ := flags.GetString("db")
	if effectiveDB == "" && !changed("db") && cfg.DB != "" {
		effectiveDB = cfg.DB
	}
	if effectiveDB == "" {
		effectiveDB = filepath.Join(assistDir, "assist.db")
	}

	effectiveNATS, _ := flags.GetString("nats")
	if effectiveNATS == "" && !changed("nats") && cfg.NATSURL != "" {
		effectiveNATS = cfg.NATSURL
	}

	effectiveTrace, _ := flags.GetBool("trace")
	if !effectiveTrace && !changed("trace") && cfg.Trace != nil {
		effectiveTrace = *cfg.Trace
	}

	effectiveJSON, _ := flags.GetBool("json")
	if !effectiveJSON && !changed("json") && cfg.JSON != nil {
		effectiveJSON = *cfg.JSON
	}

	timeout, _ := flags.GetDuration("timeout")

	ctx := libtracker.WithNewRequestID(context.Background())

	var manager libkv.Manager
	switch {
	case effectiveValkey != "":
		manager, err = libkv.NewManager(libkv.Config{
			Addr:     effectiveValkey,
			Password: cfg.ValkeyPassword,
		}, 5*time.Second)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to valkey: %w", err)
		}
	case effectivePostgres != "":
		manager, err = libkv.NewPostgresManager(ctx, effectivePostgres)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	default:
		dbPathAbs, err := filepath.Abs(effectiveDB)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid database path: %w", err)
		}
		manager, err = libkv.NewSQLiteManager(ctx, dbPathAbs)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
	}

	var bus libbus.Messenger
	if effectiveNATS != "" {
		bus, err = libbus.NewPubSub(ctx, &libbus.Config{
			NATSURL:      effectiveNATS,
			NATSUser:     cfg.NATSUser,
			NATSPassword: cfg.NATSPassword,
		})
		if err != nil {
			_ = manager.Close()
			return nil, nil, fmt.Errorf("failed to connect to nats: %w", err)
		}
	} else {
		bus = libbus.NewInMem()
	}

	cleanup := func() {
		if err := bus.Close(); err != nil {
			slog.Error("Error closing bus", "error", err)
		}
		if err := manager.Close(); err != nil {
			slog.Error("Error closing storage", "error", err)
		}
	}

	kv, err := manager.Executor(ctx)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to open storage executor: %w", err)
	}

	store := sessionstore.New(kv, slog.Default())
	store.Load(ctx)

	svc := chatservice.New(store, responder.New(nil), libclock.NewSystem(), bus, slog.Default())
	var tracker libtracker.ActivityTracker = libtracker.NewNoopTracker()
	if effectiveTrace {
		tracker = libtracker.NewSlogTracker(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	svc = chatservice.WithActivityTracker(svc, tracker)

	return ctx, &engine{
		store:   store,
		service: svc,
		bus:     bus,
		timeout: timeout,
		json:    effectiveJSON,
		cleanup: cleanup,
	}, nil
}

// awaitSnapshot subscribes to the snapshot subject before mutate runs, then reads
// snapshots until done reports true or the engine timeout elapses. The returned
// snapshot is the last one observed.
func (e *engine) awaitSnapshot(ctx context.Context, mutate func() error, done func(chatservice.Snapshot) bool) (chatservice.Snapshot, error) {
	ch := make(chan []byte, 16)
	sub, err := e.bus.Stream(ctx, chatservice.SnapshotSubject, ch)
	if err != nil {
		return chatservice.Snapshot{}, fmt.Errorf("failed to subscribe to snapshots: %w", err)
	}
	defer sub.Unsubscribe() //nolint:errcheck

	if err := mutate(); err != nil {
		return chatservice.Snapshot{}, err
	}

	deadline := time.NewTimer(e.timeout)
	defer deadline.Stop()
	var last chatservice.Snapshot
	for {
		select {
		case data := <-ch:
			var snapshot chatservice.Snapshot
			if err := json.Unmarshal(data, &snapshot); err != nil {
				continue
			}
			last = snapshot
			if done(snapshot) {
				return last, nil
			}
		case <-deadline.C:
			return last, fmt.Errorf("timed out after %s waiting for a reply", e.timeout)
		case <-ctx.Done():
			return last, ctx.Err()
		}
	}
}
