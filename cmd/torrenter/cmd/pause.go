package cmd

import (
	"github.com/pojntfx/torrenter/pkg/client"
	"github.com/spf13/viper"
)

func init() {
	pauseCmd := indexCommand("pause", []string{"p"}, "Pause a torrent on the gateway", func(m *client.Manager, index int) error {
		return m.PauseTorrent(index)
	})

	viper.AutomaticEnv()

	rootCmd.AddCommand(pauseCmd)
}
