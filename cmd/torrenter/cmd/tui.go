package cmd

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pojntfx/torrenter/pkg/tui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	shutdownTimeout = 30 * time.Second
)

var tuiCmd = &cobra.Command{
	Use:     "tui",
	Aliases: []string{"t"},
	Short:   "Manage torrents in a terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
			return err
		}

		// The terminal belongs to the UI, so logs always go to a file.
		logPath := viper.GetString(logPathFlag)
		if strings.TrimSpace(logPath) == "" {
			logPath = filepath.Join(viper.GetString(stateDirFlag), "torrenter.log")
		}

		file, err := rotatingFile(logPath)
		if err != nil {
			return err
		}
		log.Logger = log.Logger.Output(file)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		failures := make(chan error, 16)

		s, err := openSession(func(err error) {
			select {
			case failures <- err:
			default:
				log.Debug().
					Err(err).
					Msg("Dropping failure, UI is not keeping up")
			}
		}, ctx)
		if err != nil {
			return err
		}

		p := tea.NewProgram(
			tui.NewModel(s.bus, s.cache, failures, s.coordinator.Done()),
			tea.WithAltScreen(),
			tea.WithContext(ctx),
		)

		_, runErr := p.Run()

		stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stopCancel()

		if err := s.coordinator.Stop(stopCtx); err != nil {
			log.Error().
				Err(err).
				Msg("Could not shut down cleanly")

			if runErr == nil {
				return err
			}
		}

		return runErr
	},
}

func init() {
	addSessionFlags(tuiCmd)

	viper.AutomaticEnv()

	rootCmd.AddCommand(tuiCmd)
}
