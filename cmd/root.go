package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "starspot",
	Short: "Celebrity recognition service and tooling",
	Long: `StarSpot recognizes celebrities in photos using face embeddings.
It serves a recognition API that annotates matched faces, produces
transparent cutouts and presentation cards, and answers look-alike
queries; companion commands enroll new celebrities and generate their
profiles.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
