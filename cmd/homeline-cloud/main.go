// Command homeline-cloud is the Homeline hub service for the ClimaCloud
// integration.
//
// It links ClimaCloud accounts to the hub through an interactive
// wizard, imports accounts from the deprecated YAML block at startup
// and keeps linked credentials in one of three storage backends.
//
// Usage:
//
//	homeline-cloud [flags]
//
// Flags:
//
//	-config string      Configuration file path (YAML)
//	-data-dir string    Directory for persistent state (overrides config)
//	-backend string     Storage backend: file, sqlite, memory (overrides config)
//	-log-level string   Log level: debug, info, warn, error (overrides config)
//	-interactive        Enable the interactive wizard
//	-reset              Clear persisted entries before starting
//
// Examples:
//
//	# Start the hub with the interactive wizard
//	homeline-cloud -interactive
//
//	# Start with a config file and the encrypted sqlite backend
//	homeline-cloud -config hub.yaml -backend sqlite
//
//	# Wipe persisted entries and start fresh
//	homeline-cloud -data-dir /var/lib/homeline -reset
//
// Interactive Commands:
//
//	link                  - Link a ClimaCloud account
//	reauth <entry-id>     - Re-authenticate a linked account
//	accounts              - List linked accounts
//	unlink <entry-id>     - Remove a linked account
//	issues                - List active repair notices
//	dismiss <scope> <key> - Dismiss a notice
//	events [n] [mode]     - Show recent flow events
//	status                - Show hub status
//	quit                  - Exit the hub
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/homeline-hub/homeline-go/cmd/homeline-cloud/interactive"
	"github.com/homeline-hub/homeline-go/pkg/climacloud"
	hubconfig "github.com/homeline-hub/homeline-go/pkg/config"
	"github.com/homeline-hub/homeline-go/pkg/entry"
	"github.com/homeline-hub/homeline-go/pkg/eventlog"
	"github.com/homeline-hub/homeline-go/pkg/flow"
	"github.com/homeline-hub/homeline-go/pkg/issue"
	"github.com/homeline-hub/homeline-go/pkg/link"
	"github.com/homeline-hub/homeline-go/pkg/sqlite"
	"github.com/homeline-hub/homeline-go/pkg/version"
)

// Config holds the hub configuration from flags and the config file.
// It implements interactive.HubConfig.
type Config struct {
	ConfigFile  string
	DataDir     string
	BackendName string
	LogLevel    string
	Interactive bool
	Reset       bool

	resolved *hubconfig.Config
}

// Backend implements interactive.HubConfig.
func (c *Config) Backend() string {
	return c.resolved.Storage.Backend
}

// BaseURL implements interactive.HubConfig.
func (c *Config) BaseURL() string {
	return c.resolved.Cloud.BaseURL
}

// EventLogPath implements interactive.HubConfig.
func (c *Config) EventLogPath() string {
	return c.resolved.Log.EventLog
}

var config Config

func init() {
	flag.StringVar(&config.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&config.DataDir, "data-dir", "", "Directory for persistent state (overrides config)")
	flag.StringVar(&config.BackendName, "backend", "", "Storage backend: file, sqlite, memory (overrides config)")
	flag.StringVar(&config.LogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.BoolVar(&config.Interactive, "interactive", false, "Enable the interactive wizard")
	flag.BoolVar(&config.Reset, "reset", false, "Clear persisted entries before starting")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	config.resolved = cfg

	logLevel := setupLogging(cfg)

	log.Println("Homeline ClimaCloud Hub")
	log.Println("=======================")
	log.Printf("Version: %s", version.Current)
	log.Printf("Backend: %s", cfg.Storage.Backend)
	log.Printf("Cloud API: %s", cfg.Cloud.BaseURL)

	if config.Reset {
		log.Println("Resetting persisted entries...")
		if err := resetState(cfg); err != nil {
			log.Printf("Warning: Failed to reset state: %v", err)
		}
	}

	var events eventlog.Logger = eventlog.NopLogger{}
	if cfg.Log.EventLog != "" {
		fileLogger, err := eventlog.NewFileLogger(cfg.Log.EventLog)
		if err != nil {
			log.Fatalf("Failed to open event log: %v", err)
		}
		defer func() {
			if err := fileLogger.Close(); err != nil {
				log.Printf("Error closing event log: %v", err)
			}
		}()
		events = fileLogger
		log.Printf("Event log: %s", cfg.Log.EventLog)
	}
	if logLevel == slog.LevelDebug {
		// Mirror flow events to the console while debugging.
		events = eventlog.NewMultiLogger(events, eventlog.NewSlogAdapter(slog.Default()))
	}

	store, issues, closeStore, err := openStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStore()

	client, err := climacloud.NewClient(climacloud.Config{
		BaseURL:    cfg.Cloud.BaseURL,
		AppVersion: cfg.Cloud.AppVersion,
	})
	if err != nil {
		log.Fatalf("Failed to create cloud client: %v", err)
	}

	manager, err := entry.NewManager(&entry.ManagerConfig{
		Store:  store,
		Reload: reloadEntry(client, store),
		Logger: slog.Default(),
	})
	if err != nil {
		log.Fatalf("Failed to create entry manager: %v", err)
	}

	svc, err := link.NewService(&link.ServiceConfig{
		Authenticator: client,
		Entries:       manager,
		Issues:        issues,
		EventLogger:   events,
		Logger:        slog.Default(),
		AuthTimeout:   time.Duration(cfg.Cloud.Timeout),
	})
	if err != nil {
		log.Fatalf("Failed to create linking service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Accounts from the deprecated YAML block are imported once per
	// start, before the wizard accepts commands.
	importLegacyAccounts(ctx, svc, cfg.Accounts)

	if config.Interactive {
		ic, err := interactive.New(svc, manager, issues, &config)
		if err != nil {
			log.Fatalf("Failed to create interactive wizard: %v", err)
		}
		// Redirect log output through readline to avoid interfering with input
		log.SetOutput(ic.Stdout())
		go ic.Run(ctx, cancel)
	}

	// Wait for shutdown signal or context cancellation
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
		// Context was cancelled (e.g. by the wizard's quit command)
	}

	log.Println("Shutting down...")
	cancel()

	// Drain scheduled reloads before the stores close.
	manager.Wait()

	log.Println("Goodbye!")
}

// loadConfig resolves the file configuration and applies flag overrides.
func loadConfig() (*hubconfig.Config, error) {
	cfg := hubconfig.DefaultConfig()
	if config.ConfigFile != "" {
		loaded, err := hubconfig.Load(config.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if config.DataDir != "" {
		cfg.Storage.DataDir = config.DataDir
	}
	if config.BackendName != "" {
		cfg.Storage.Backend = config.BackendName
	}
	if config.LogLevel != "" {
		cfg.Log.Level = config.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging configures the standard logger and the slog level. The
// slog default handler forwards through the log package, so wizard
// output redirection covers both.
func setupLogging(cfg *hubconfig.Config) slog.Level {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		// Validate already rejected unknown levels.
		level = slog.LevelInfo
	}
	slog.SetLogLoggerLevel(level)

	if level == slog.LevelDebug {
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	}
	return level
}

// openStorage builds the entry store and notice registry for the
// configured backend. The returned func releases backend resources.
func openStorage(cfg *hubconfig.Config) (entry.Store, issue.Registry, func(), error) {
	switch cfg.Storage.Backend {
	case hubconfig.BackendMemory:
		return entry.NewMemoryStore(), issue.NewMemoryRegistry(), func() {}, nil

	case hubconfig.BackendFile:
		if err := os.MkdirAll(cfg.Storage.DataDir, 0700); err != nil {
			return nil, nil, nil, err
		}
		store := entry.NewFileStore(filepath.Join(cfg.Storage.DataDir, "entries.json"))
		return store, issue.NewMemoryRegistry(), func() {}, nil

	case hubconfig.BackendSQLite:
		if err := os.MkdirAll(cfg.Storage.DataDir, 0700); err != nil {
			return nil, nil, nil, err
		}
		keyFile := cfg.Storage.KeyFile
		if keyFile == "" {
			keyFile = filepath.Join(cfg.Storage.DataDir, "master.key")
		}
		key, err := sqlite.LoadOrCreateKey(keyFile)
		if err != nil {
			return nil, nil, nil, err
		}

		db, err := sqlite.NewDB(filepath.Join(cfg.Storage.DataDir, "homeline.db"))
		if err != nil {
			return nil, nil, nil, err
		}
		if err := sqlite.RunMigrations(db.Writer); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		store, err := sqlite.NewEntryStore(db, key)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}

		closeDB := func() {
			if err := db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}
		return store, sqlite.NewIssueRegistry(db), closeDB, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// resetState removes persisted entries for the configured backend. The
// master key survives a reset; there is nothing left it can decrypt.
func resetState(cfg *hubconfig.Config) error {
	switch cfg.Storage.Backend {
	case hubconfig.BackendFile:
		return removeIfPresent(filepath.Join(cfg.Storage.DataDir, "entries.json"))

	case hubconfig.BackendSQLite:
		dbPath := filepath.Join(cfg.Storage.DataDir, "homeline.db")
		for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			if err := removeIfPresent(path); err != nil {
				return err
			}
		}
	}
	return nil
}

func removeIfPresent(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// reloadEntry returns the reload handler invoked after a credential
// change. It probes device enumeration with the fresh credential.
func reloadEntry(client *climacloud.Client, store entry.Store) entry.ReloadFunc {
	return func(ctx context.Context, entryID string) error {
		e, err := store.Get(ctx, entryID)
		if err != nil {
			return err
		}
		devices, err := client.ListDevices(ctx, e.Credential)
		if err != nil {
			return err
		}
		slog.Info("account reloaded", "entry_id", entryID, "devices", len(devices))
		return nil
	}
}

// importLegacyAccounts runs the non-interactive import flow for every
// account still present in the deprecated YAML block.
func importLegacyAccounts(ctx context.Context, svc *link.Service, accounts []hubconfig.LegacyAccount) {
	for _, account := range accounts {
		res, err := svc.ImportAccount(ctx, account.Identifier, account.Credential)
		if err != nil {
			log.Printf("Import failed for %s: %v", account.Identifier, err)
			continue
		}

		switch {
		case res.Kind == flow.KindCreated:
			log.Printf("Imported account %s", account.Identifier)
		case res.Reason == flow.AbortAlreadyConfigured:
			log.Printf("Account %s is already linked", account.Identifier)
		default:
			log.Printf("Import aborted for %s: %s", account.Identifier, res.Reason)
		}
	}
}
