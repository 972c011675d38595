package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	httpapi "github.com/i474232898/shutterscout/internal/api/http"
	"github.com/i474232898/shutterscout/internal/config"
	"github.com/i474232898/shutterscout/internal/report"
	"github.com/i474232898/shutterscout/internal/scheduler"
	"github.com/i474232898/shutterscout/internal/scout"
	"github.com/i474232898/shutterscout/internal/scout/providers"
	"github.com/i474232898/shutterscout/internal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shutterscout",
		Short: "Photography location scout",
		Long:  "Aggregates location, weather, sun times, nearby places and sample photos into a scouting report",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(scoutCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newService wires providers, aggregator and store from configuration.
func newService(cfg *config.AppConfig) *scout.Service {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	sources := providers.NewSources(httpClient, providers.Credentials{
		TomorrowAPIKey:   cfg.TomorrowAPIKey,
		FoursquareAPIKey: cfg.FoursquareAPIKey,
		FlickrAPIKey:     cfg.FlickrAPIKey,
		PlacesRadiusM:    cfg.PlacesRadiusM,
		PhotoSize:        providers.ParsePhotoSize(cfg.PhotoSize),
	})

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	return scout.NewService(memStore, scout.NewAggregator(sources, cfg.Aggregator()))
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the periodic refresh",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			service := newService(cfg)

			// Scheduler that periodically refreshes the snapshot.
			sched := scheduler.New(cfg.RefreshInterval, service)
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer sched.Stop()

			app := fiber.New(fiber.Config{
				AppName:               "shutterscout",
				DisableStartupMessage: true,
				ReadTimeout:           10 * time.Second,
				// Runs include retries with backoff.
				WriteTimeout: 3 * time.Minute,
				ErrorHandler: func(c *fiber.Ctx, err error) error {
					// Centralized error response
					code := fiber.StatusInternalServerError
					if e, ok := err.(*fiber.Error); ok {
						code = e.Code
					}
					return c.Status(code).JSON(fiber.Map{
						"error":   true,
						"message": err.Error(),
					})
				},
			})

			// Global middleware
			app.Use(logger.New())
			app.Use(recover.New())

			app.Get("/health", func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{
					"status":  "ok",
					"service": "shutterscout",
				})
			})

			httpapi.RegisterRoutes(app, service)

			go func() {
				if err := app.Listen(":" + cfg.Port); err != nil {
					log.Printf("fiber server stopped: %v", err)
				}
			}()
			log.Printf("INFO: listening on :%s", cfg.Port)

			// Wait for termination signal
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				log.Printf("error during shutdown: %v", err)
			}
			return nil
		},
	}
}

func scoutCmd() *cobra.Command {
	var (
		ip      string
		format  string
		output  string
		narrate bool
	)

	cmd := &cobra.Command{
		Use:   "scout",
		Short: "Run one aggregation and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("unknown format %q (text, json, yaml)", format)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("output") {
				cfg.ReportPath = output
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			snapshot, err := newService(cfg).Refresh(ctx, ip)
			if err != nil {
				return fmt.Errorf("scout run failed: %w", err)
			}

			var out []byte
			switch format {
			case "json":
				out, err = json.MarshalIndent(snapshot, "", "  ")
			case "yaml":
				out, err = yaml.Marshal(snapshot)
			default:
				var narrator *report.Narrator
				if narrate {
					if cfg.AnthropicAPIKey == "" {
						log.Printf("WARN: --narrate set but ANTHROPIC_API_KEY is empty; using plain report")
					} else {
						narrator = report.NewNarrator(cfg.AnthropicAPIKey)
					}
				}
				var text string
				text, err = report.Generate(ctx, snapshot, narrator)
				out = []byte(text)
			}
			if err != nil {
				return err
			}

			fmt.Println(string(out))
			if cfg.ReportPath != "" && cfg.ReportPath != "-" {
				return report.WriteFile(cfg.ReportPath, string(out))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ip, "ip", "", "IP address to scout around (default: this machine's public address)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "report file path, \"-\" to skip writing (default from REPORT_PATH)")
	cmd.Flags().BoolVar(&narrate, "narrate", false, "write the report with Claude (needs ANTHROPIC_API_KEY)")

	return cmd
}
