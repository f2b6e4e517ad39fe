package main

import (
	"bandsetlist/internal/completion"
	"bandsetlist/internal/setlist"
	"bandsetlist/shared/go/config"
)

// newEngine builds the generation engine, enabling the model-assisted path
// only when an API key is configured.
func newEngine(cfg config.CompletionConfig, recorder setlist.Recorder) *setlist.Engine {
	opts := setlist.Options{
		MaxTokens:    cfg.MaxTokens,
		Temperature:  &cfg.Temperature,
		ModelTimeout: cfg.Timeout,
		Recorder:     recorder,
		Logger:       logger,
	}

	if cfg.Enabled() {
		client := completion.NewOpenAI(completion.Config{
			APIKey:         cfg.APIKey,
			Model:          cfg.Model,
			BaseURL:        cfg.BaseURL,
			RequestTimeout: cfg.Timeout,
		})
		opts.Completer = completion.NewThrottled(client, cfg.RequestsPerMinute)
		logger.Info().Str("model", client.Model()).Msg("model-assisted selection enabled")
	} else {
		logger.Info().Msg("OPENAI_API_KEY not set, using random selection only")
	}

	return setlist.New(opts)
}
