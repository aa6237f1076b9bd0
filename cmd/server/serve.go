package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carcompare/backend/config"
	httpDelivery "github.com/carcompare/backend/internal/delivery/http"
	"github.com/carcompare/backend/internal/infrastructure/carsapi"
	"github.com/carcompare/backend/internal/infrastructure/session"
	"github.com/carcompare/backend/internal/usecase"
	"github.com/spf13/cobra"
)

const (
	RootCmdName  = "carcompare"
	RootCmdShort = "Side-by-side vehicle comparison service"
	RootCmdLong  = `carcompare serves a page with two autocompleting vehicle inputs and
compares the chosen vehicles using the cars catalog API.`

	ServeCmdName  = "serve"
	ServeCmdShort = "Start the HTTP server"
	ServeCmdLong  = `Start the HTTP server. Configuration comes from config.yaml, .env and
CARCOMPARE_* environment variables; flags override all of them.`

	shutdownTimeout = 10 * time.Second
)

var RootCmd = &cobra.Command{
	Use:   RootCmdName,
	Short: RootCmdShort,
	Long:  RootCmdLong,
}

var ServeCmd = &cobra.Command{
	Use:   ServeCmdName,
	Short: ServeCmdShort,
	Long:  ServeCmdLong,
	RunE:  serveCmdFunc,
}

// Execute runs the root command
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func init() {
	ServeCmd.Flags().String("port", "8080", "port to listen on")
	ServeCmd.Flags().String("environment", "development", "development or production")
	RootCmd.AddCommand(ServeCmd)
}

func serveCmdFunc(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadWithFlags(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Printf("Starting CarCompare Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	carsClient := carsapi.NewClient(cfg.CarsAPI.APIKey, cfg.CarsAPI.BaseURL, cfg.CarsAPI.Host, cfg.CarsAPI.Timeout)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		carsClient.SetDebug(true)
		log.Printf("Cars API client debug mode enabled")
	}

	if cfg.CarsAPI.APIKey != "" {
		log.Printf("Cars API configured: %s (host: %s)", cfg.CarsAPI.BaseURL, cfg.CarsAPI.Host)
	} else {
		log.Printf("WARNING: Cars API configured: %s (key: NOT CONFIGURED - API calls will fail!)", cfg.CarsAPI.BaseURL)
	}

	store := session.NewMemoryStore[*usecase.Session](
		cfg.Session.TTL,
		cfg.Session.CleanupInterval,
		session.WithEvictHook(func(_ string, s *usecase.Session) { s.Close() }),
	)
	defer store.Stop()
	log.Printf("Session TTL: %s", cfg.Session.TTL)

	// Initialize usecase layer
	sessions := usecase.NewSessionService(store, carsClient, usecase.SuggestionConfig{
		Debounce:       cfg.Suggest.Debounce,
		BlurGrace:      cfg.Suggest.BlurGrace,
		MinQueryLength: cfg.Suggest.MinQueryLength,
		Limit:          cfg.Suggest.Limit,
	})
	selector := usecase.NewSelectorService(carsClient)

	log.Printf("Suggestions: debounce=%s, blur=%s, min=%d, limit=%d",
		cfg.Suggest.Debounce,
		cfg.Suggest.BlurGrace,
		cfg.Suggest.MinQueryLength,
		cfg.Suggest.Limit)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(sessions, selector, carsClient,
		httpDelivery.WithKeepAlive(min(httpDelivery.DefaultKeepAlive, cfg.Session.TTL/2)),
	)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", server.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down the server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Open event streams only end when their sessions close
	store.Stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
