package main

import (
	"fmt"

	"go.uber.org/zap"

	appemail "mailreply/internal/application/email"
	"mailreply/internal/infrastructure/config"
	"mailreply/internal/infrastructure/extract"
	"mailreply/internal/infrastructure/llm"
	"mailreply/internal/infrastructure/persistence/sqlite"
	"mailreply/internal/infrastructure/zeroshot"
)

// app holds the shared handles built once at startup.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	extractor *extract.Extractor
	repo      *sqlite.SuggestionRepository
	suggest   *appemail.SuggestReplyUseCase
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func newApp() (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	labels, err := config.LoadLabelMap(cfg.LabelsFile)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}

	llmClient, err := llm.NewClient(llm.Options{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.ModelName,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		MaxRetries:  2,
	})
	if err != nil {
		return nil, fmt.Errorf("create LLM client: %w", err)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		extractor: extract.NewExtractor(logger),
	}

	var store appemail.SuggestionRepository
	if cfg.DatabasePath != "" {
		repo, err := sqlite.NewSuggestionRepository(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("open suggestion store: %w", err)
		}
		a.repo = repo
		store = repo
	}

	classifier := appemail.NewClassifier(zeroshot.NewClient(cfg.ZeroShotURL, cfg.HFAPIToken), labels, logger)
	responder := appemail.NewResponder(classifier, llmClient, logger)
	a.suggest = appemail.NewSuggestReplyUseCase(responder, store, logger)

	return a, nil
}

func (a *app) close() {
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.logger.Error("Failed to close repository", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
