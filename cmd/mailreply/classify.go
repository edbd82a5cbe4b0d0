package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mailreply/internal/domain/email"
)

type classifyOutput struct {
	Category       email.Category `json:"category"`
	SuggestedReply string         `json:"suggested_reply"`
}

func classifyCmd() *cobra.Command {
	var (
		file string
		text string
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify one email and print the suggested reply",
		Long:  "Run the classification pipeline once on --file or --text and print the result as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, file, text)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "email file (.txt, .pdf, .eml, .html)")
	cmd.Flags().StringVar(&text, "text", "", "email body")
	cmd.MarkFlagsMutuallyExclusive("file", "text")

	return cmd
}

func runClassify(cmd *cobra.Command, file, text string) error {
	if file == "" && text == "" {
		return errors.New("provide --file or --text")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if file != "" {
		result, err := a.extractor.Extract(file)
		if err != nil {
			return err
		}
		if result.Degraded {
			a.logger.Warn("Classifying empty text", zap.String("file", file), zap.Error(result.Cause))
		}
		text = result.Text
	}

	s, err := a.suggest.Execute(ctx, email.SourceCLI, "", text)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(classifyOutput{Category: s.Category, SuggestedReply: s.Reply})
}
