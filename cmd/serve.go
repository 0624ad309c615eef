package cmd

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/celebware/starspot/internal/config"
	"github.com/celebware/starspot/internal/gallery"
	"github.com/celebware/starspot/internal/pipeline"
	"github.com/celebware/starspot/internal/render"
	"github.com/celebware/starspot/internal/store"
	"github.com/celebware/starspot/internal/store/mysql"
	"github.com/celebware/starspot/internal/store/postgres"
	"github.com/celebware/starspot/internal/vision"
	"github.com/celebware/starspot/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recognition API server",
	Long: `Start the StarSpot web server.
The server exposes the recognition API: annotated celebrity matches,
transparent cutouts with presentation cards, profile management, and
look-alike queries.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// initLogging routes slog through a JSON handler so container logs stay
// machine-parseable.
func initLogging() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
}

// loadGallery pulls every enrolled identity into memory.
func loadGallery(ctx context.Context, identities store.IdentityReader, cfg *config.Config) (*gallery.Gallery, error) {
	stored, err := identities.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load identities: %w", err)
	}

	ids := make([]gallery.Identity, len(stored))
	for i, s := range stored {
		ids[i] = gallery.Identity{ID: s.ID, Name: s.Name, Embedding: s.Embedding}
	}

	return gallery.New(ids, cfg.Matching.EmbeddingDim, cfg.Matching.Tolerance), nil
}

// pipelineBackgrounds converts palette gradient anchors into render colors.
func pipelineBackgrounds(palette config.PaletteConfig) map[string]pipeline.Background {
	backgrounds := make(map[string]pipeline.Background, len(palette.Backgrounds))
	for hex, pair := range palette.Backgrounds {
		backgrounds[hex] = pipeline.Background{
			Top:    color.NRGBA{R: pair.Top[0], G: pair.Top[1], B: pair.Top[2], A: 255},
			Bottom: color.NRGBA{R: pair.Bottom[0], G: pair.Bottom[1], B: pair.Bottom[2], A: 255},
		}
	}
	return backgrounds
}

// buildPipeline wires the model-server clients and render configuration
// around a loaded gallery.
func buildPipeline(cfg *config.Config, gal *gallery.Gallery) (*pipeline.Pipeline, error) {
	fonts, err := render.LoadFontSet(cfg.Render.FontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load fonts: %w", err)
	}

	detector := vision.NewDetectorClient(cfg.Detector.URL, cfg.Detector.Model)
	segmenter := vision.NewSegmenterClient(cfg.Segmenter.URL, cfg.Segmenter.MaxConcurrent)

	return pipeline.New(detector, segmenter, gal, fonts, cfg.Palette.Colors, pipelineBackgrounds(cfg.Palette)), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	initLogging()
	cfg := config.Load()

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = mustGetInt(cmd, "port")
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = mustGetString(cmd, "host")
	}

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	slog.Info("connecting to PostgreSQL")
	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	identityRepo := postgres.NewIdentityRepository(pool)
	ctx := context.Background()

	// The profile database is optional; recognition works without it and
	// the profile routes answer 503.
	var profiles store.ProfileWriter
	if cfg.Profile.DatabaseURL != "" {
		mysqlPool, err := mysql.NewPool(cfg.Profile.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		defer mysqlPool.Close()

		if err := mysqlPool.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to prepare profile schema: %w", err)
		}
		profiles = mysql.NewProfileRepository(mysqlPool)
		slog.Info("profile database connected")
	} else {
		slog.Info("no profile database configured, profile routes disabled")
	}

	gal, err := loadGallery(ctx, identityRepo, cfg)
	if err != nil {
		return err
	}
	slog.Info("gallery loaded", "celebrities", gal.Size(), "tolerance", gal.Tolerance())

	var index *gallery.SimilarityIndex
	if cfg.Database.HNSWIndex {
		index = gallery.NewSimilarityIndex(gal)
		slog.Info("similarity index built", "size", index.Count())
	}

	pipe, err := buildPipeline(cfg, gal)
	if err != nil {
		return err
	}

	server := web.NewServer(cfg, web.Deps{
		Pipeline:   pipe,
		Index:      index,
		Identities: identityRepo,
		Profiles:   profiles,
		Version:    Version,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during shutdown", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
