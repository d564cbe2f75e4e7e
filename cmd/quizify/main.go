package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Saurav-Ganguly/quizify"
)

func main() {
	var configPath string
	var verbose bool

	root := &cobra.Command{
		Use:   "quizify",
		Short: "Turn PDFs into multiple-choice quizzes",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			quizify.SetVerbose(verbose)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "quizify.yaml", "path to config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newIngestCmd(&configPath))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
