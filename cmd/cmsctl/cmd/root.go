// Package cmd contains all CLI commands for cmsctl.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/eshaffer321/cmsclient-go/internal/config"
	"github.com/eshaffer321/cmsclient-go/pkg/cms"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configFile string
	modeFlag   string
	urlFlag    string
	output     string

	// Set up by the root pre-run
	client *cms.Client
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cmsctl",
	Short: "Command-line client for the CMS API",
	Long: `cmsctl talks to the CMS backend: log in, browse articles and work
through the approval queue.

Examples:
  # Log in against the mock backend
  cmsctl --mode mock login testadmin --password password

  # List published articles
  cmsctl articles list --status published

  # Approve a pending revision
  cmsctl approvals approve <revision-id> --comment "looks good"

Environment Variables:
  CMS_API_MODE           mock, real or auto (default: auto)
  CMS_API_URL            Real backend base URL (default: http://localhost:8000)
  CMS_APP_ENV            development, production or test
  CMS_SESSION_STORE      memory, file or bolt (default: file)
  CMS_SESSION_FILE_PATH  Session file or database path
  CMS_LOG_LEVEL          debug, info, warn or error`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if client != nil {
			client.Close()
			client = nil
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVarP(&modeFlag, "mode", "m", "", "Backend mode: mock, real or auto (overrides CMS_API_MODE)")
	rootCmd.PersistentFlags().StringVarP(&urlFlag, "url", "u", "", "Real backend base URL (overrides CMS_API_URL)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format: table, json")
}

// setup loads settings and builds the client every command uses
func setup(cmd *cobra.Command, args []string) error {
	// a failed command skips the post-run
	if client != nil {
		client.Close()
		client = nil
	}

	settings, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if modeFlag != "" {
		mode, err := config.ParseMode(modeFlag)
		if err != nil {
			return err
		}
		settings.Mode = mode
	}
	if urlFlag != "" {
		settings.APIURL = urlFlag
	}

	logger, err = initLogger(settings.Logging)
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}

	storage, err := openStorage(settings.Session)
	if err != nil {
		return err
	}

	client, err = cms.NewClient(&cms.ClientOptions{
		Mode:           settings.Mode,
		Environment:    settings.Environment,
		BaseURL:        settings.APIURL,
		Timeout:        settings.Timeout,
		RetryConfig:    &cms.RetryConfig{MaxRetries: settings.MaxRetries},
		SessionStorage: storage,
		Logger:         cms.NewZapLogger(logger),
		SentryDSN:      settings.SentryDSN,
	})
	return err
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.OutputPaths = []string{"stderr"}

	// Set log level
	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return zapCfg.Build()
}

func openStorage(cfg config.SessionConfig) (cms.SessionStorage, error) {
	switch cfg.Store {
	case "memory":
		return cms.NewMemoryStorage(), nil
	case "bolt":
		path := cfg.FilePath
		if path == "" {
			path = cms.DefaultSessionPath() + ".db"
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, errors.Wrap(err, "failed to create session directory")
		}
		storage, err := cms.OpenBoltStorage(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open session database")
		}
		return storage, nil
	default:
		return cms.NewFileStorage(cfg.FilePath), nil
	}
}
