package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pojntfx/torrenter/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	streamURLsFlag = "stream-urls"
)

type fileInfo struct {
	Path      string `yaml:"path"`
	Priority  string `yaml:"priority"`
	StreamURL string `yaml:"streamURL,omitempty"`
}

var priorityCmd = &cobra.Command{
	Use:     "priority <index> <file> <skip|low|default|high>",
	Aliases: []string{"prio"},
	Short:   "Change the priority of a file of a torrent on the gateway",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		manager, err := newManager(cmd, ctx)
		if err != nil {
			return err
		}

		index, err := parseIndex(args)
		if err != nil {
			return err
		}

		file, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}

		return manager.SetFilePriority(index, file, args[2])
	},
}

func init() {
	infoCmd := indexCommand("info", []string{"i"}, "Get a torrent's details from the gateway", func(m *client.Manager, index int) error {
		torrent, err := m.GetTorrent(index)
		if err != nil {
			return err
		}

		if !viper.GetBool(streamURLsFlag) {
			y, err := yaml.Marshal(torrent)
			if err != nil {
				return err
			}

			fmt.Printf("%s", y)

			return nil
		}

		files := []fileInfo{}
		for _, f := range torrent.Files {
			u, err := m.StreamURL(index, f.Index)
			if err != nil {
				return err
			}

			files = append(files, fileInfo{
				Path:      f.Path,
				Priority:  f.Priority,
				StreamURL: u,
			})
		}

		y, err := yaml.Marshal(files)
		if err != nil {
			return err
		}

		fmt.Printf("%s", y)

		return nil
	})

	infoCmd.PersistentFlags().Bool(streamURLsFlag, false, "Only print the torrent's files and the URLs to stream them from")

	addClientFlags(priorityCmd)

	viper.AutomaticEnv()

	rootCmd.AddCommand(infoCmd, priorityCmd)
}
