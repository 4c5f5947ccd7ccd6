package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	kindFlag = "kind"
)

var (
	errMissingSource = errors.New("missing magnet link or torrent file")
)

var addCmd = &cobra.Command{
	Use:     "add <magnet-or-file>",
	Aliases: []string{"a"},
	Short:   "Add a torrent to the gateway",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		manager, err := newManager(cmd, ctx)
		if err != nil {
			return err
		}

		source := strings.TrimSpace(args[0])
		if source == "" {
			return errMissingSource
		}

		kind := viper.GetString(kindFlag)
		if kind == "file" || (kind == "" && !strings.HasPrefix(source, "magnet:")) {
			// The gateway resolves file paths on its own host.
			if abs, err := filepath.Abs(source); err == nil {
				source = abs
			}
		}

		if err := manager.AddTorrent(source, kind); err != nil {
			return err
		}

		log.Info().
			Str("source", source).
			Msg("Added torrent")

		return nil
	},
}

func init() {
	addClientFlags(addCmd)

	addCmd.PersistentFlags().StringP(kindFlag, "k", "", "Kind of source, either magnet or file (detected from the source if empty)")

	viper.AutomaticEnv()

	rootCmd.AddCommand(addCmd)
}
