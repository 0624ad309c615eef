package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/celebware/starspot/internal/config"
	"github.com/celebware/starspot/internal/constants"
	"github.com/celebware/starspot/internal/gallery"
	"github.com/celebware/starspot/internal/store"
	"github.com/celebware/starspot/internal/store/postgres"
	"github.com/celebware/starspot/internal/vision"
)

var seedCmd = &cobra.Command{
	Use:   "seed [photo-dir]",
	Short: "Enroll celebrities into the gallery from a photo directory",
	Long: `Enroll celebrities into the recognition gallery from a directory of photos.

The directory must contain one subdirectory per celebrity, named after the
person, with one or more photos inside:

  photos/
    Ada Lovelace/
      portrait.jpg
      red-carpet.png
    Grace Hopper/
      keynote.jpg

Every photo is scanned with the face detector and the embeddings of all
photos of one person are averaged into a single gallery entry. Re-running
the command replaces previous entries, so adding photos improves matching.

Examples:
  # Enroll everyone under ./photos (5 concurrent workers)
  starspot seed ./photos

  # Preview what would be enrolled without touching the database
  starspot seed ./photos --dry-run

  # Use different concurrency
  starspot seed ./photos --workers 3`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().Int("workers", constants.DefaultSeedWorkers, "Number of parallel workers")
	seedCmd.Flags().Bool("dry-run", false, "Detect faces but do not write to the database")
}

// seedPhoto is one photo queued for face detection.
type seedPhoto struct {
	person string
	path   string
}

// scanSeedDir lists enrollment photos grouped by celebrity name. Each
// subdirectory of root names one person; non-image files are ignored.
func scanSeedDir(root string) (map[string][]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo directory: %w", err)
	}

	photos := make(map[string][]string)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		person := entry.Name()

		files, err := os.ReadDir(filepath.Join(root, person))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", person, err)
		}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(file.Name())) {
			case ".jpg", ".jpeg", ".png":
				photos[person] = append(photos[person], filepath.Join(root, person, file.Name()))
			}
		}
	}
	return photos, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	workers := mustGetInt(cmd, "workers")
	dryRun := mustGetBool(cmd, "dry-run")

	ctx := context.Background()
	cfg := config.Load()

	photosByPerson, err := scanSeedDir(args[0])
	if err != nil {
		return err
	}
	if len(photosByPerson) == 0 {
		return fmt.Errorf("no celebrity directories with photos found in %s", args[0])
	}

	var identityRepo *postgres.IdentityRepository
	if !dryRun {
		if cfg.Database.URL == "" {
			return errors.New("DATABASE_URL environment variable is required (or use --dry-run)")
		}
		fmt.Println("Connecting to PostgreSQL...")
		pool, err := postgres.Initialize(&cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		defer pool.Close()
		identityRepo = postgres.NewIdentityRepository(pool)

		count, _ := identityRepo.Count(ctx)
		fmt.Printf("Celebrities in database: %d\n", count)
	}

	// Enrollment is offline, so favor the slower, more accurate detection
	// model unless the environment pins one.
	model := cfg.Detector.Model
	if model == "" {
		model = "accurate"
	}
	detector := vision.NewDetectorClient(cfg.Detector.URL, model)

	var queue []seedPhoto
	for person, paths := range photosByPerson {
		for _, path := range paths {
			queue = append(queue, seedPhoto{person: person, path: path})
		}
	}

	fmt.Printf("Scanning %d photos of %d celebrities\n\n", len(queue), len(photosByPerson))

	bar := progressbar.NewOptions(len(queue),
		progressbar.OptionSetDescription("Detecting faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	embeddings := make(map[string][][]float32)
	var warnings []string
	var mu sync.Mutex

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, photo := range queue {
		wg.Add(1)
		go func(p seedPhoto) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			defer bar.Add(1)

			warn := func(format string, args ...any) {
				mu.Lock()
				warnings = append(warnings, fmt.Sprintf(format, args...))
				mu.Unlock()
			}

			data, err := os.ReadFile(p.path)
			if err != nil {
				warn("read %s: %v", p.path, err)
				return
			}

			faces, err := detector.DetectFaces(ctx, data)
			if err != nil {
				warn("detect %s: %v", p.path, err)
				return
			}
			if len(faces) == 0 {
				warn("no face found in %s", p.path)
				return
			}

			// Seed photos should show one person; the detector orders faces
			// by size so the first one is the subject.
			embedding := faces[0].Embedding
			if len(embedding) != cfg.Matching.EmbeddingDim {
				warn("unexpected embedding size %d in %s", len(embedding), p.path)
				return
			}

			mu.Lock()
			embeddings[p.person] = append(embeddings[p.person], embedding)
			mu.Unlock()
		}(photo)
	}

	wg.Wait()
	fmt.Println()

	for _, warning := range warnings {
		fmt.Printf("warning: %s\n", warning)
	}
	if len(warnings) > 0 {
		fmt.Println()
	}

	names := make([]string, 0, len(embeddings))
	for name := range embeddings {
		names = append(names, name)
	}
	sort.Strings(names)

	var enrolled int
	for _, name := range names {
		avg := gallery.AverageEmbeddings(embeddings[name])
		if avg == nil {
			continue
		}
		id := gallery.Slug(name)

		if dryRun {
			fmt.Printf("would enroll %s as %q (%d photos)\n", name, id, len(embeddings[name]))
			enrolled++
			continue
		}

		err := identityRepo.Upsert(ctx, store.StoredIdentity{
			ID:        id,
			Name:      name,
			Embedding: avg,
			Dim:       len(avg),
		})
		if err != nil {
			return fmt.Errorf("failed to enroll %s: %w", name, err)
		}
		fmt.Printf("enrolled %s as %q (%d photos)\n", name, id, len(embeddings[name]))
		enrolled++
	}

	skipped := len(photosByPerson) - enrolled
	fmt.Printf("\nCompleted: %d celebrities enrolled, %d skipped, %d warnings\n", enrolled, skipped, len(warnings))
	if !dryRun {
		count, _ := identityRepo.Count(ctx)
		fmt.Printf("Total celebrities in database: %d\n", count)
	}

	return nil
}
