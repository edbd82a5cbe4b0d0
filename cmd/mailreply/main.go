package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mailreply/internal/infrastructure/config"
)

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "mailreply",
		Short: "Classify emails and suggest replies",
		Long: `mailreply sorts incoming emails into Produtivo or Improdutivo with a
zero-shot model and drafts a short reply in Portuguese with an OpenAI
chat model.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "dotenv file overlaid on the environment")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(classifyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
