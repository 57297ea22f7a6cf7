package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studycard/studycard/internal/llm"
)

var reportLimit int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show which backend payload formats have worked",
	Long:  `Prints the remembered successful payload formats, ranked by frequency and recency, so you can see how the backend negotiation is behaving.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		memory := llm.NewExampleMemory(cfg.ExamplesFile(), newLogger())
		top := memory.Top(reportLimit)
		if len(top) == 0 {
			fmt.Println("No successful payload formats recorded yet.")
			fmt.Println("They accumulate as the remote backend accepts requests.")
			return nil
		}

		fmt.Printf("Top payload formats (%s):\n\n", cfg.ExamplesFile())
		fmt.Printf("  %-16s %6s %8s  %s\n", "FORMAT", "USES", "SCORE", "LAST SUCCESS")
		for _, ex := range top {
			fmt.Printf("  %-16s %6d %8.2f  %s\n", ex.Format, ex.Freq, ex.Score, ex.LatestTS.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportLimit, "limit", 10, "Maximum formats to show")
	rootCmd.AddCommand(reportCmd)
}
