package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/studycard/studycard/internal/config"
)

var summarizePDF string

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".bmp": true, ".tiff": true, ".webp": true,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file>",
	Short: "Summarize a note photo or text file into study-card JSON",
	Long: `Reads the given file, runs OCR when it is an image, condenses the text
into learning points and confusion pairs, and prints the result as JSON.
With --pdf the card is also rendered to the given path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger := newLogger()
		summarizer, _ := buildSummarizer(cfg, logger)
		ctx := cmd.Context()

		path := args[0]
		text, imagePath, err := readInput(ctx, cfg, path, logger)
		if err != nil {
			return err
		}

		result := summarizer.Summarize(ctx, text)

		if summarizePDF != "" {
			if err := buildRenderer(cfg, logger).Render(result, imagePath, summarizePDF); err != nil {
				return fmt.Errorf("rendering card: %w", err)
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result)
	},
}

// readInput returns the text to summarize and, for images, the path to
// embed in a rendered card. OCR failures degrade to empty text.
func readInput(ctx context.Context, cfg *config.Config, path string, logger *slog.Logger) (string, string, error) {
	if imageExtensions[strings.ToLower(filepath.Ext(path))] {
		text, err := buildExtractor(cfg, logger).Text(ctx, path)
		if err != nil {
			logger.Warn("ocr failed, proceeding with empty text", "file", path, "error", err)
			return "", path, nil
		}
		return text, path, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), "", nil
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizePDF, "pdf", "", "Also render the card to this PDF path")
	rootCmd.AddCommand(summarizeCmd)
}
