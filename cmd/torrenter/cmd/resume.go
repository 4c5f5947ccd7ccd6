package cmd

import (
	"github.com/pojntfx/torrenter/pkg/client"
	"github.com/spf13/viper"
)

func init() {
	resumeCmd := indexCommand("resume", []string{"r"}, "Resume a paused torrent on the gateway", func(m *client.Manager, index int) error {
		return m.ResumeTorrent(index)
	})

	streamCmd := indexCommand("stream-mode", []string{"s"}, "Toggle sequential streaming of a torrent on the gateway", func(m *client.Manager, index int) error {
		return m.ToggleStreamMode(index)
	})

	viper.AutomaticEnv()

	rootCmd.AddCommand(resumeCmd, streamCmd)
}
