package config

import (
	"errors"
	"fmt"
	"net/url"

	"verbatim/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateReview(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// RequireLLM reports whether the reviser can be called with the current settings.
func (c *Config) RequireLLM() error {
	if c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return services.Wrap(services.ErrConfiguration, "config", "require llm",
			fmt.Sprintf("llm.api_key is required. Set VERBATIM_LLM_API_KEY or OPENROUTER_API_KEY, or edit %s (create with 'verbatim config init')", defaultPath), nil)
	}
	return nil
}

func (c *Config) validateReview() error {
	r := c.Review
	if r.MaxChunkSeconds <= 0 {
		return errors.New("review.max_chunk_seconds must be positive")
	}
	if r.MinTailFraction < 0 || r.MinTailFraction >= 1 {
		return errors.New("review.min_tail_fraction must be in [0, 1)")
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return errors.New("review.temperature must be between 0 and 2")
	}
	if r.SimilarityWarnThreshold < 0 || r.SimilarityWarnThreshold > 1 {
		return errors.New("review.similarity_warn_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	u, err := url.Parse(topic)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic %q must be an http(s) URL", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
