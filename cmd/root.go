package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "modelresolver",
	Short: "Resolve, search, and fetch the model weights a node-graph workflow depends on",
	Long: `modelresolver reads a ComfyUI-style workflow document, extracts the
checkpoint/lora/vae/... files it depends on, checks them against a local
models directory, and searches Hugging Face and Civitai for anything
missing, queuing resumable downloads to bring a workflow's dependencies
fully local.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".modelresolver.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
