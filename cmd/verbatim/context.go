package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"verbatim/internal/config"
	"verbatim/internal/fileutil"
	"verbatim/internal/logging"
	"verbatim/internal/services"
	"verbatim/internal/store"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.configPath = resolved
		c.configExists = exists
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// loggerValue returns the file-backed logger, or a no-op logger when it
// cannot be built.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) withStore(fn func(*store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// withWriteLock runs fn against the store while holding the data directory
// lock, so two commands never write the same store at once.
func (c *commandContext) withWriteLock(fn func(*store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock, err := fileutil.AcquireLock(cfg.LockPath())
	if err != nil {
		if errors.Is(err, fileutil.ErrLocked) {
			return services.Wrap(services.ErrValidation, "cli", "lock store",
				"another verbatim command is writing to the store", err)
		}
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			c.loggerValue().Warn("release store lock", logging.Error(err))
		}
	}()
	return c.withStore(fn)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

var skipConfig = map[string]string{"skipConfigLoad": "true"}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func requireTranscript(cmd *cobra.Command, st *store.Store, name string) (*store.Transcript, *store.RevisionRecord, error) {
	tr, err := st.RequireTranscript(cmd.Context(), name)
	if err != nil {
		return nil, nil, err
	}
	latest, err := st.LatestRevision(cmd.Context(), tr.ID)
	if err != nil {
		return nil, nil, err
	}
	if latest == nil {
		return nil, nil, services.Wrap(services.ErrNotFound, "cli", "load transcript",
			fmt.Sprintf("transcript %q has no revisions", name), nil)
	}
	return tr, latest, nil
}
