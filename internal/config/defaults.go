package config

const (
	defaultConfigPath              = "~/.config/verbatim/config.toml"
	defaultDataDir                 = "~/.local/share/verbatim"
	defaultLogDir                  = "~/.local/share/verbatim/logs"
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultLLMBaseURL              = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel                = "google/gemini-2.5-flash"
	defaultLLMReferer              = "https://github.com/verbatim-transcripts/verbatim"
	defaultLLMTitle                = "Verbatim Transcript Review"
	defaultLLMTimeoutSeconds       = 120
	defaultMaxChunkSeconds         = 1200
	defaultMinTailFraction         = 0.1
	defaultTemperature             = 1.0
	defaultPreviousTailWords       = 40
	defaultSimilarityWarnThreshold = 0.5
	defaultWatchDebounceMS         = 300
	defaultWatchPollSeconds        = 2
	defaultNtfyTimeoutSeconds      = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Review: Review{
			MaxChunkSeconds:         defaultMaxChunkSeconds,
			MinTailFraction:         defaultMinTailFraction,
			Temperature:             defaultTemperature,
			PreviousTailWords:       defaultPreviousTailWords,
			SimilarityWarnThreshold: defaultSimilarityWarnThreshold,
			PromptOptions: map[string]string{
				"fillers":  "Keep filler words such as um, uh, and you know exactly as spoken.",
				"numbers":  "Write numbers the way the speaker said them.",
				"speakers": "Do not merge or split speaker turns.",
			},
		},
		Watch: Watch{
			DebounceMS:          defaultWatchDebounceMS,
			PollIntervalSeconds: defaultWatchPollSeconds,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
