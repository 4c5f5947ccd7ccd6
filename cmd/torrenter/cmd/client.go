package cmd

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/pojntfx/torrenter/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	raddrFlag = "raddr"
)

var (
	errMissingAPIPassword = errors.New("missing API password")
	errMissingAPIUsername = errors.New("missing API username")
	errMissingIndex       = errors.New("missing torrent index")
)

func newManager(cmd *cobra.Command, ctx context.Context) (*client.Manager, error) {
	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		return nil, err
	}

	if err := setupLogging(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(viper.GetString(apiPasswordFlag)) == "" {
		return nil, errMissingAPIPassword
	}

	if strings.TrimSpace(viper.GetString(apiUsernameFlag)) == "" {
		return nil, errMissingAPIUsername
	}

	return client.NewManager(
		viper.GetString(raddrFlag),
		viper.GetString(apiUsernameFlag),
		viper.GetString(apiPasswordFlag),
		ctx,
	), nil
}

func parseIndex(args []string) (int, error) {
	if len(args) < 1 {
		return 0, errMissingIndex
	}

	return strconv.Atoi(args[0])
}

func addClientFlags(c *cobra.Command) {
	c.PersistentFlags().StringP(apiUsernameFlag, "u", "admin", "Username for the gateway")
	c.PersistentFlags().StringP(apiPasswordFlag, "p", "", "Password or OIDC access token for the gateway")
	c.PersistentFlags().StringP(raddrFlag, "r", "http://localhost:1337/", "Remote address")
}

// indexCommand builds a command that runs one gateway call against a torrent index.
func indexCommand(use string, aliases []string, short string, run func(m *client.Manager, index int) error) *cobra.Command {
	c := &cobra.Command{
		Use:     use + " <index>",
		Aliases: aliases,
		Short:   short,
		Args:    cobra.ExactArgs(1),
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

			return run(manager, index)
		},
	}

	addClientFlags(c)

	return c
}
