package cmd

import (
	"github.com/pojntfx/torrenter/pkg/client"
	"github.com/spf13/viper"
)

func init() {
	removeCmd := indexCommand("remove", []string{"rm"}, "Remove a torrent from the gateway, keeping its data", func(m *client.Manager, index int) error {
		return m.RemoveTorrent(index)
	})

	viper.AutomaticEnv()

	rootCmd.AddCommand(removeCmd)
}
