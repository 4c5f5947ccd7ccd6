package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pojntfx/torrenter/pkg/coordinator"
	"github.com/pojntfx/torrenter/pkg/engine/anacrolix"
	"github.com/pojntfx/torrenter/pkg/state"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	downloadsFlag   = "downloads"
	stateDirFlag    = "state-dir"
	torrentPortFlag = "torrent-port"
)

// session is a running engine with its coordinator.
type session struct {
	cache       *state.Cache
	bus         *coordinator.Bus
	coordinator *coordinator.Coordinator
}

func openSession(onFailure func(err error), ctx context.Context) (*session, error) {
	downloads := viper.GetString(downloadsFlag)
	if err := os.MkdirAll(downloads, os.ModePerm); err != nil {
		return nil, err
	}

	resumeDir := filepath.Join(viper.GetString(stateDirFlag), "resume")
	if err := os.MkdirAll(resumeDir, os.ModePerm); err != nil {
		return nil, err
	}

	s := &session{
		cache: state.NewCache(),
		bus:   coordinator.NewBus(),
	}

	s.coordinator = coordinator.NewCoordinator(
		anacrolix.NewEngine(viper.GetInt(torrentPortFlag)),
		s.cache,
		s.bus,
		resumeDir,
		downloads,
		onFailure,
		ctx,
	)

	if err := s.coordinator.Open(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("downloads", downloads).
		Str("resumeDir", resumeDir).
		Msg("Opened session")

	return s, nil
}

func addSessionFlags(c *cobra.Command) {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	c.PersistentFlags().StringP(downloadsFlag, "d", filepath.Join(home, "Downloads"), "Directory to save new torrents to")
	c.PersistentFlags().String(stateDirFlag, filepath.Join(home, ".local", "share", "torrenter"), "Directory to store resume data and logs in")
	c.PersistentFlags().Int(torrentPortFlag, 0, "Port to accept peer connections on (0 picks a free port)")
}
