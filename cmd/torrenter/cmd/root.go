package cmd

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	verboseFlag = "verbose"
	configFlag  = "config"
	logPathFlag = "log-path"
)

var rootCmd = &cobra.Command{
	Use:   "torrenter",
	Short: "BitTorrent client with a terminal UI and a remote control gateway",
	Long: `Download, seed and stream torrents from your terminal or over HTTP.

Find more information at:
https://github.com/pojntfx/torrenter`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.SetEnvPrefix("")
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

		if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
			return err
		}

		if err := readConfig(); err != nil {
			return err
		}

		applyLogLevel()

		return nil
	},
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "torrenter", "config.yaml")
}

// readConfig loads the optional config file and reapplies the log level whenever it changes.
func readConfig() error {
	path := viper.GetString(configFlag)
	if strings.TrimSpace(path) == "" {
		path = defaultConfigPath()

		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return err
	}

	log.Debug().
		Str("path", viper.ConfigFileUsed()).
		Msg("Loaded config file")

	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info().
			Str("path", e.Name).
			Msg("Config file changed")

		applyLogLevel()
	})
	viper.WatchConfig()

	return nil
}

func applyLogLevel() {
	switch viper.GetInt(verboseFlag) {
	case 0:
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case 1:
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case 2:
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case 3:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case 4:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case 5:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case 6:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}
}

var errMissingLogPath = errors.New("missing log path")

func rotatingFile(path string) (io.Writer, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errMissingLogPath
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, err
	}

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50,
		MaxBackups: 3,
	}, nil
}

// setupLogging writes logs to stderr, and also to the rotating log file if one is configured.
func setupLogging() error {
	var writer io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	if path := viper.GetString(logPathFlag); strings.TrimSpace(path) != "" {
		file, err := rotatingFile(path)
		if err != nil {
			return err
		}

		writer = io.MultiWriter(writer, file)
	}

	log.Logger = log.Logger.Output(writer)

	return nil
}

func Execute() error {
	rootCmd.PersistentFlags().IntP(verboseFlag, "v", 5, "Verbosity level (0 is disabled, default is info, 7 is trace)")
	rootCmd.PersistentFlags().String(configFlag, "", "Path to a YAML config file (defaults to "+defaultConfigPath()+" if it exists)")
	rootCmd.PersistentFlags().String(logPathFlag, "", "Path to a log file, rotated automatically (can also be set using the LOG_PATH env variable)")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return err
	}

	viper.AutomaticEnv()

	return rootCmd.Execute()
}
