package cmd

import (
	"github.com/spf13/cobra"

	"github.com/studycard/studycard/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize studycard configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the summarization backend and data directories, and writes the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
