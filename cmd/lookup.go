package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/celebware/starspot/internal/config"
	"github.com/celebware/starspot/internal/pipeline"
	"github.com/celebware/starspot/internal/store/postgres"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [image]",
	Short: "Recognize celebrities in a photo",
	Long: `Recognize celebrities in a photo against the enrolled gallery.

By default the command runs the full annotation flow and writes the photo
with glow outlines and name badges next to the input file. With --fast the
command only reports detected faces and matches, without rendering.

Examples:
  # Annotate a photo, writes premiere.annotated.png
  starspot lookup premiere.jpg

  # Write the annotated photo somewhere else
  starspot lookup premiere.jpg --out /tmp/annotated.png

  # Skip rendering, just print who is in the photo
  starspot lookup premiere.jpg --fast

  # Stricter matching (lower tolerance = stricter)
  starspot lookup premiere.jpg --tolerance 0.5

  # Output as JSON
  starspot lookup premiere.jpg --fast --json`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().Bool("fast", false, "Skip rendering, only report matches")
	lookupCmd.Flags().String("out", "", "Output path for the annotated image (default <image>.annotated.png)")
	lookupCmd.Flags().Float64("tolerance", 0, "Override the match tolerance")
	lookupCmd.Flags().Bool("json", false, "Output as JSON")
}

// LookupOutput is the JSON output structure of the lookup command.
type LookupOutput struct {
	Faces   int              `json:"faces,omitempty"`
	Matches []pipeline.Match `json:"matches"`
	Output  string           `json:"output,omitempty"`
}

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

// printMatchTable prints one line per recognized celebrity.
func printMatchTable(matches []pipeline.Match) {
	if len(matches) == 0 {
		fmt.Println("No celebrities recognized")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCONFIDENCE\tFACE\tBOX")
	fmt.Fprintln(w, "----\t----------\t----\t---")
	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%.1f%%\t%d\t%dx%d+%d+%d\n",
			m.Name, m.Confidence*100, m.FaceIndex,
			m.BoundingBox.Width, m.BoundingBox.Height, m.BoundingBox.X, m.BoundingBox.Y)
	}
	w.Flush()
}

// writePNG encodes img into a freshly created file.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // user-chosen output path
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

func runLookup(cmd *cobra.Command, args []string) error {
	imagePath := args[0]

	fast := mustGetBool(cmd, "fast")
	outPath := mustGetString(cmd, "out")
	jsonOutput := mustGetBool(cmd, "json")

	ctx := context.Background()
	cfg := config.Load()

	if cmd.Flags().Changed("tolerance") {
		cfg.Matching.Tolerance = mustGetFloat64(cmd, "tolerance")
	}

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	gal, err := loadGallery(ctx, postgres.NewIdentityRepository(pool), cfg)
	if err != nil {
		return err
	}
	if gal.Size() == 0 {
		return errors.New("the gallery is empty, run 'starspot seed' first")
	}

	pipe, err := buildPipeline(cfg, gal)
	if err != nil {
		return err
	}

	imageData, err := os.ReadFile(imagePath) //nolint:gosec // user-chosen input path
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	if fast {
		result, err := pipe.Detect(ctx, imageData)
		if err != nil {
			return fmt.Errorf("recognition failed: %w", err)
		}

		if jsonOutput {
			return outputJSON(LookupOutput{Faces: len(result.Faces), Matches: result.Matches})
		}
		fmt.Printf("Detected %d faces, recognized %d\n\n", len(result.Faces), len(result.Matches))
		printMatchTable(result.Matches)
		return nil
	}

	src, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	result, err := pipe.Annotate(ctx, src, imageData)
	if err != nil {
		return fmt.Errorf("recognition failed: %w", err)
	}

	if outPath == "" {
		outPath = strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".annotated.png"
	}
	if err := writePNG(outPath, result.Image); err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(LookupOutput{Matches: result.Matches, Output: outPath})
	}
	printMatchTable(result.Matches)
	fmt.Printf("\nAnnotated image written to %s\n", outPath)
	return nil
}
