package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/skeleton-pawn/stweb/internal/config"
	"github.com/skeleton-pawn/stweb/internal/db"
	"github.com/skeleton-pawn/stweb/internal/server"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = ""
)

const (
	configDebounce  = 500 * time.Millisecond
	shutdownTimeout = 10 * time.Second
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			runServe(os.Args[2:])
			return
		case "version", "--version", "-v":
			fmt.Printf("stweb %s (commit %s, built %s)\n",
				version, commit, buildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	runServe(os.Args[1:])
}

func printUsage() {
	fmt.Printf(`stweb %s - personal study time tracker

Records study sessions per subject into SQLite and serves daily and
trailing-window statistics, streaks, and feedback over a REST API.

Usage:
  stweb [flags]          Start the server (default command)
  stweb serve [flags]    Start the server (explicit)
  stweb version          Show version information
  stweb help             Show this help

Server flags:
  -host string        Host to bind to (default "127.0.0.1")
  -port int           Port to listen on (default 8090)

Environment variables:
  STWEB_DATA_DIR       Data directory (database, config)
  STWEB_TIMEZONE       IANA timezone for study dates
  STWEB_CUTOFF_HOUR    Hour before which sessions count as yesterday
  STWEB_API_PASSWORD   Require this bearer token on the API

Data is stored in ~/.stweb/ by default.
`, version)
}

func runServe(args []string) {
	cfg := mustLoadConfig(args)
	database := mustOpenDB(cfg)
	defer database.Close()

	port := server.FindAvailablePort(cfg.Host, cfg.Port)
	if port != cfg.Port {
		fmt.Printf("Port %d in use, using %d\n", cfg.Port, port)
	}
	cfg.Port = port

	srv := server.New(cfg, database,
		server.WithVersion(server.VersionInfo{
			Version:   version,
			Commit:    commit,
			BuildDate: buildDate,
		}),
	)

	stopWatcher := startConfigWatcher(cfg, srv)
	defer stopWatcher()

	fmt.Printf("stweb %s listening at http://%s:%d\n",
		version, cfg.Host, cfg.Port)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("server error: %v", err)
	case sig := <-sigCh:
		log.Printf("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(
		context.Background(), shutdownTimeout,
	)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func mustLoadConfig(args []string) config.Config {
	fs := flag.NewFlagSet("stweb", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			"Usage: stweb [serve] [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	config.RegisterServeFlags(fs)
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("creating data dir: %v", err)
	}
	return cfg
}

func mustOpenDB(cfg config.Config) *db.DB {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	return database
}

// startConfigWatcher reloads the runtime config (subjects, cutoff
// hour, messages, password) when the config file changes on disk.
// Host and port changes still require a restart.
func startConfigWatcher(
	cfg config.Config, srv *server.Server,
) func() {
	onChange := func() { reloadConfig(srv) }

	watcher, err := config.NewWatcher(
		cfg.ConfigPath(), configDebounce, onChange,
	)
	if err != nil {
		log.Printf("warning: config watcher unavailable: %v", err)
		return func() {}
	}
	watcher.Start()
	return watcher.Stop
}

// reloadConfig re-reads the config file and applies it to the running
// server. A file that fails to load or validate is logged and skipped:
// ApplyConfig resolves the timezone, and handing it an unvalidated
// config would let a bad edit take the process down.
func reloadConfig(srv *server.Server) {
	fresh, err := config.LoadMinimal()
	if err != nil {
		log.Printf("config reload failed: %v", err)
		return
	}
	if err := fresh.Validate(); err != nil {
		log.Printf("config reload rejected: %v", err)
		return
	}
	log.Println("config changed, applying")
	srv.ApplyConfig(fresh)
}
