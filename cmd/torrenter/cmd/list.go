package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	failuresOnlyFlag = "failures-only"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l", "ls"},
	Short:   "List the gateway's torrents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		manager, err := newManager(cmd, ctx)
		if err != nil {
			return err
		}

		var out any
		if viper.GetBool(failuresOnlyFlag) {
			out, err = manager.GetFailures()
		} else {
			out, err = manager.ListTorrents()
		}
		if err != nil {
			return err
		}

		y, err := yaml.Marshal(out)
		if err != nil {
			return err
		}

		fmt.Printf("%s", y)

		return nil
	},
}

func init() {
	addClientFlags(listCmd)

	listCmd.PersistentFlags().Bool(failuresOnlyFlag, false, "List recent failures instead of torrents")

	viper.AutomaticEnv()

	rootCmd.AddCommand(listCmd)
}
