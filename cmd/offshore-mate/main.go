package main

import (
	"fmt"
	"os"

	"github.com/ramunasnognys/offshore-mate-v3/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	logger     = zap.NewNop()
	appConfig  *config.Config

	// schedule selection, shared by every command that needs a rotation
	startFlag    string
	patternFlag  string
	scheduleFlag string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "offshore-mate",
		Short:         "Offshore rotation calendar",
		Long:          "Work out on-duty, off-duty and travel days of a repeating offshore rotation, browse the calendar and export it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			appConfig = cfg

			if cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					logger = initLogger(cfg.Log.Level) // Fallback to console
				}
			} else {
				logger = initLogger(cfg.Log.Level) // Default console logger
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Config file path (default: ./config.yaml, $HOME/.offshore-mate, /etc/offshore-mate)")
	flags.StringVar(&startFlag, "start", "", "Rotation start date, YYYY-MM-DD (first on-duty day)")
	flags.StringVar(&patternFlag, "pattern", "", "Rotation pattern <on>/<off>, e.g. 14/14")
	flags.StringVar(&scheduleFlag, "schedule", "", "ID of a saved schedule")

	rootCmd.AddCommand(
		statusCmd(),
		monthCmd(),
		yearCmd(),
		statsCmd(),
		browseCmd(),
		exportCmd(),
		schedulesCmd(),
		briefingCmd(),
		daemonCmd(),
	)
	return rootCmd
}

func initLogger(level string) *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err == nil {
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	}

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	return logger
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	// Create core with lumberjack writer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
