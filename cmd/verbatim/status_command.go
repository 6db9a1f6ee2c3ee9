package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"verbatim/internal/config"
	"verbatim/internal/deps"
	"verbatim/internal/preflight"
	"verbatim/internal/services"
	"verbatim/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check directories, the transcript store, and the reviser endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			report := &statusReport{colorize: shouldColorize(out)}

			report.section("Configuration")
			if ctx.configExists {
				report.add("Config", statusOK, ctx.configPath)
			} else {
				report.add("Config", statusWarn, ctx.configPath+" not found, using defaults")
			}

			report.section("Dependencies")
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				if result.Passed {
					report.add(result.Name, statusOK, result.Detail)
				} else {
					report.add(result.Name, statusError, result.Detail)
				}
			}
			addClipboardStatus(report)
			addNotificationStatus(report, cfg)

			report.section("Store")
			err = ctx.withStore(func(st *store.Store) error {
				health, err := st.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}
				addStoreStatus(report, health)
				return nil
			})
			if err != nil {
				report.add("Database", statusError, err.Error())
			}

			fmt.Fprintln(out, report.String())
			if len(report.failures) == 0 {
				return nil
			}
			return services.Wrap(services.ErrConfiguration, "cli", "status",
				"failing checks: "+strings.Join(report.failures, ", "), nil)
		},
	}
}

// addClipboardStatus warns when --copy has no helper to drive. It never fails
// status since copying is optional.
func addClipboardStatus(report *statusReport) {
	reqs := deps.ClipboardRequirements()
	if len(reqs) == 0 {
		report.add("Clipboard", statusOK, "built in")
		return
	}
	if found, ok := deps.FirstAvailable(deps.CheckBinaries(reqs)); ok {
		report.add("Clipboard", statusOK, found.Path)
		return
	}
	names := make([]string, 0, len(reqs))
	for _, r := range reqs {
		names = append(names, r.Command)
	}
	report.add("Clipboard", statusWarn, "none of "+strings.Join(names, ", ")+" found; --copy will not work")
}

func addNotificationStatus(report *statusReport, cfg *config.Config) {
	if topic := cfg.Notifications.NtfyTopic; topic != "" {
		report.add("Notifications", statusInfo, topic)
		return
	}
	report.add("Notifications", statusInfo, "disabled")
}

func addStoreStatus(report *statusReport, health store.DatabaseHealth) {
	report.add("Database", statusInfo, health.DBPath)
	if len(health.MissingTables) > 0 {
		report.add("Schema", statusError, "missing tables: "+strings.Join(health.MissingTables, ", "))
	} else {
		report.add("Schema", statusOK, fmt.Sprintf("version %d", health.SchemaVersion))
	}
	if health.IntegrityCheck {
		report.add("Integrity", statusOK, "ok")
	} else {
		report.add("Integrity", statusError, "integrity_check failed")
	}
	report.add("Contents", statusInfo, fmt.Sprintf("%d transcripts, %d revisions", health.Transcripts, health.Revisions))
}
