package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	// Register vision providers
	_ "cardenrich/internal/vision/claude"
	_ "cardenrich/internal/vision/gemini"
	_ "cardenrich/internal/vision/openai"
)

var rootCmd = &cobra.Command{
	Use:   "cardenrich",
	Short: "Enrich business-card sheets with fields read from each card image",
	Long: `cardenrich reads a CSV of business-card records (id, created_at, image_url,
comment), asks a vision model to read each card image, and writes the sheet back
with the extracted columns appended.

Configuration comes from CARDENRICH_* environment variables and an optional .env file.

Examples:
  cardenrich enrich --input cards.csv --output enriched.csv
  cardenrich enrich -i s3://leads/cards.csv --format xlsx -o enriched.xlsx
  cardenrich enrich -i cards.csv --fields contact --concurrency 4`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
