package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/studycard/studycard/internal/server"
)

var (
	servePort     int
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the study-card web server",
	Long:  `Starts the web server with the upload form, generated card downloads, and the payload-format examples API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.Port = servePort
		}

		logger := newLogger()
		summarizer, memory := buildSummarizer(cfg, logger)

		srv := server.New(server.Config{
			Port:      cfg.Port,
			UploadDir: cfg.UploadDir,
			OutputDir: cfg.OutputDir,
			AllowAll:  serveAllowAll,
		}, summarizer, buildExtractor(cfg, logger), buildRenderer(cfg, logger), memory, logger)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "studycard server v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Backend: %s\n", cfg.Backend)
		fmt.Fprintf(os.Stderr, "  Uploads: %s\n", cfg.UploadDir)
		fmt.Fprintf(os.Stderr, "  Outputs: %s\n", cfg.OutputDir)

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "Allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
