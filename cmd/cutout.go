package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/celebware/starspot/internal/config"
	"github.com/celebware/starspot/internal/gallery"
	"github.com/celebware/starspot/internal/pipeline"
	"github.com/celebware/starspot/internal/render"
)

var cutoutCmd = &cobra.Command{
	Use:   "cutout [image]",
	Short: "Cut a person out of a photo with a presentation card",
	Long: `Cut a person out of a photo and build a stylized presentation card.

The command removes the background around the face box you supply, producing
a transparent cutout plus a presentation card with a gradient background,
glow outline and caption. Face boxes come from 'starspot lookup --fast',
given as x,y,width,height in pixels.

Examples:
  # Cut out the person whose face box is at 120,80 sized 200x200
  starspot cutout premiere.jpg --face 120,80,200,200 --name "Ada Lovelace"

  # Pick the accent color of the card
  starspot cutout premiere.jpg --face 120,80,200,200 --name "Ada Lovelace" --color "#4ECDC4"

  # Write the results somewhere else
  starspot cutout premiere.jpg --face 120,80,200,200 --name "Ada Lovelace" --out-dir /tmp`,
	Args: cobra.ExactArgs(1),
	RunE: runCutout,
}

func init() {
	rootCmd.AddCommand(cutoutCmd)

	cutoutCmd.Flags().String("face", "", "Face box as x,y,width,height in pixels")
	cutoutCmd.Flags().String("name", "", "Caption under the cutout")
	cutoutCmd.Flags().String("color", "#FF6B6B", "Accent color as #RRGGBB")
	cutoutCmd.Flags().String("out-dir", ".", "Directory for cutout.png and presentation.png")
}

// parseFaceBox parses a face box given as "x,y,width,height".
func parseFaceBox(s string) (pipeline.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return pipeline.BoundingBox{}, fmt.Errorf("expected x,y,width,height, got %q", s)
	}

	vals := make([]int, 4)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return pipeline.BoundingBox{}, fmt.Errorf("expected x,y,width,height, got %q", s)
		}
		vals[i] = v
	}

	box := pipeline.BoundingBox{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	if box.Width <= 0 || box.Height <= 0 {
		return pipeline.BoundingBox{}, errors.New("face width and height must be positive")
	}
	return box, nil
}

func runCutout(cmd *cobra.Command, args []string) error {
	imagePath := args[0]

	face := mustGetString(cmd, "face")
	name := mustGetString(cmd, "name")
	hexColor := mustGetString(cmd, "color")
	outDir := mustGetString(cmd, "out-dir")

	if face == "" {
		return errors.New("--face is required")
	}
	box, err := parseFaceBox(face)
	if err != nil {
		return err
	}
	if name == "" {
		return errors.New("--name is required")
	}
	if _, err := render.ParseHex(hexColor); err != nil {
		return fmt.Errorf("invalid color %q, expected #RRGGBB", hexColor)
	}

	ctx := context.Background()
	cfg := config.Load()

	// The cutout flow never consults the gallery, so no database is needed.
	pipe, err := buildPipeline(cfg, gallery.New(nil, cfg.Matching.EmbeddingDim, cfg.Matching.Tolerance))
	if err != nil {
		return err
	}

	imageData, err := os.ReadFile(imagePath) //nolint:gosec // user-chosen input path
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	src, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	result, err := pipe.Cutout(ctx, src, box, name, hexColor)
	if err != nil {
		return fmt.Errorf("cutout failed: %w", err)
	}

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create %s: %w", outDir, err)
	}

	cutoutPath := filepath.Join(outDir, "cutout.png")
	presentationPath := filepath.Join(outDir, "presentation.png")
	if err := writePNG(cutoutPath, result.Cutout); err != nil {
		return err
	}
	if err := writePNG(presentationPath, result.Presentation); err != nil {
		return err
	}

	fmt.Printf("Cutout written to %s\n", cutoutPath)
	fmt.Printf("Presentation card written to %s\n", presentationPath)
	return nil
}
