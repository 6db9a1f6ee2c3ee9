package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"verbatim/internal/config"
	"verbatim/internal/notifications"
	"verbatim/internal/services"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigNotifyTestCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Args:        cobra.NoArgs,
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set llm.api_key (or export VERBATIM_LLM_API_KEY) before running 'verbatim review'.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			source := ctx.configPath
			if !ctx.configExists {
				source += " (not found, defaults)"
			}
			fmt.Fprintf(out, "Config path: %s\n\n", source)

			rows := [][]string{
				{"paths.data_dir", cfg.Paths.DataDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"llm.base_url", cfg.LLM.BaseURL},
				{"llm.model", cfg.LLM.Model},
				{"llm.api_key", maskSecret(cfg.LLM.APIKey)},
				{"llm.timeout_seconds", fmt.Sprint(cfg.LLM.TimeoutSeconds)},
				{"review.max_chunk_seconds", fmt.Sprint(cfg.Review.MaxChunkSeconds)},
				{"review.max_chunk_words", fmt.Sprint(cfg.Review.MaxChunkWords)},
				{"review.min_tail_fraction", fmt.Sprint(cfg.Review.MinTailFraction)},
				{"review.temperature", fmt.Sprint(cfg.Review.Temperature)},
				{"review.previous_tail_words", fmt.Sprint(cfg.Review.PreviousTailWords)},
				{"review.similarity_warn_threshold", fmt.Sprint(cfg.Review.SimilarityWarnThreshold)},
				{"review.prompt_options", strings.Join(cfg.PromptOptionNames(), ", ")},
				{"watch.debounce_ms", fmt.Sprint(cfg.Watch.DebounceMS)},
				{"watch.poll_interval_seconds", fmt.Sprint(cfg.Watch.PollIntervalSeconds)},
				{"notifications.ntfy_topic", cfg.Notifications.NtfyTopic},
				{"logging.level", cfg.Logging.Level},
				{"logging.format", cfg.Logging.Format},
			}
			spec := tableSpec{headers: []string{"Key", "Value"}}
			fmt.Fprintln(out, spec.render(rows))
			return nil
		},
	}
}

func maskSecret(value string) string {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return "(unset)"
	case len(value) <= 8:
		return "****"
	default:
		return value[:4] + "…" + value[len(value)-4:]
	}
}

func newConfigNotifyTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "notify-test",
		Short: "Send a test notification to the configured ntfy topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc := notifications.NewService(cfg)
			if !notifications.Enabled(svc) {
				return services.Wrap(services.ErrConfiguration, "cli", "notify test",
					"notifications.ntfy_topic is not set", nil)
			}
			if err := svc.TestNotification(cmd.Context()); err != nil {
				return services.Wrap(services.ErrExternalTool, "cli", "notify test", cfg.Notifications.NtfyTopic, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent test notification to %s\n", cfg.Notifications.NtfyTopic)
			return nil
		},
	}
}
