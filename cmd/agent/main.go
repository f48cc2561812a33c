package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/svgagenius/svga-agent/internal/animation"
	"github.com/svgagenius/svga-agent/internal/api"
	"github.com/svgagenius/svga-agent/internal/artifacts"
	"github.com/svgagenius/svga-agent/internal/config"
	"github.com/svgagenius/svga-agent/internal/db"
	"github.com/svgagenius/svga-agent/internal/export"
	"github.com/svgagenius/svga-agent/internal/guard"
	"github.com/svgagenius/svga-agent/internal/ledger"
	"github.com/svgagenius/svga-agent/internal/logging"
	"github.com/svgagenius/svga-agent/internal/ui"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting svga export agent", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := ledger.NewRepository(database.Conn())

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	admin, err := ensureAdminUser(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure admin user: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║  SVGA EXPORT AGENT v%-37s ║\n", config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Admin User: %-45s ║\n", admin.ID)
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	store, err := artifacts.NewStore(cfg.ArtifactsDir(), logging.WithComponent(logger, "artifacts"))
	if err != nil {
		return fmt.Errorf("failed to initialize artifact store: %w", err)
	}

	exporter := export.NewExporter(
		animation.FixedSettle(cfg.SettleDelay()),
		logging.WithComponent(logger, "export"),
	)
	exportGuard := guard.New(repo, logging.WithComponent(logger, "guard"))

	apiServer := api.NewServer(api.ServerConfig{
		Port:           cfg.Port(),
		Exporter:       exporter,
		Guard:          exportGuard,
		Repository:     repo,
		Artifacts:      store,
		Logger:         logging.WithComponent(logger, "api"),
		StartTime:      startTime,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Exporter:  exporter,
			Artifacts: store,
			APIAddr:   apiServer.Addr(),
			Logger:    logging.WithComponent(logger, "ui"),
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// ensureAuthToken returns the persisted API token, generating one on first
// run.
func ensureAuthToken(repo ledger.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "auth_token")
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}

	return token, nil
}

// ensureAdminUser guarantees the ledger holds at least one administrator so
// a fresh install can export without editing the database by hand.
func ensureAdminUser(repo ledger.Repository) (*ledger.User, error) {
	ctx := context.Background()

	existing, err := repo.GetUserByEmail(ctx, "admin@localhost")
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	admin := &ledger.User{
		ID:          ledger.NewID(),
		Email:       "admin@localhost",
		DisplayName: "Administrator",
		Role:        ledger.RoleAdmin,
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}
