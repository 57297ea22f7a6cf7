package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/studycard/studycard/internal/progress"
)

var batchOutDir string

var batchCmd = &cobra.Command{
	Use:   "batch <pattern>",
	Short: "Generate study cards for every image matching a glob pattern",
	Long: `Expands a glob pattern (** is supported, e.g. "notes/**/*.jpg"), runs
OCR and summarization over each matching image, and writes one PDF card
per image. Failures on individual images are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if batchOutDir == "" {
			batchOutDir = cfg.OutputDir
		}
		if err := os.MkdirAll(batchOutDir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		matches, err := doublestar.FilepathGlob(args[0])
		if err != nil {
			return fmt.Errorf("expanding pattern %q: %w", args[0], err)
		}
		var images []string
		for _, m := range matches {
			if imageExtensions[strings.ToLower(filepath.Ext(m))] {
				images = append(images, m)
			}
		}
		if len(images) == 0 {
			return fmt.Errorf("no images match %q", args[0])
		}

		logger := newLogger()
		summarizer, _ := buildSummarizer(cfg, logger)
		extractor := buildExtractor(cfg, logger)
		renderer := buildRenderer(cfg, logger)
		ctx := cmd.Context()

		reporter := progress.NewReporter()
		reporter.Start(len(images))

		var failed int
		for i, img := range images {
			reporter.Update(i+1, filepath.Base(img))

			text, err := extractor.Text(ctx, img)
			if err != nil {
				logger.Warn("ocr failed, proceeding with empty text", "image", img, "error", err)
				text = ""
			}
			result := summarizer.Summarize(ctx, text)

			base := strings.TrimSuffix(filepath.Base(img), filepath.Ext(img))
			outPath := filepath.Join(batchOutDir, base+".pdf")
			if err := renderer.Render(result, img, outPath); err != nil {
				logger.Error("rendering card failed", "image", img, "error", err)
				failed++
			}
		}
		reporter.Finish()

		fmt.Fprintf(os.Stderr, "Generated %d cards in %s", len(images)-failed, batchOutDir)
		if failed > 0 {
			fmt.Fprintf(os.Stderr, " (%d failed)", failed)
		}
		fmt.Fprintln(os.Stderr)
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchOutDir, "out", "", "Output directory for cards (defaults to the configured output dir)")
	rootCmd.AddCommand(batchCmd)
}
