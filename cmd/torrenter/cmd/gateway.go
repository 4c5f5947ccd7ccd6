package cmd

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	v1 "github.com/pojntfx/torrenter/pkg/api/http/v1"
	"github.com/pojntfx/torrenter/pkg/coordinator"
	"github.com/pojntfx/torrenter/pkg/metrics"
	"github.com/pojntfx/torrenter/pkg/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	laddrFlag        = "laddr"
	apiUsernameFlag  = "api-username"
	apiPasswordFlag  = "api-password"
	oidcIssuerFlag   = "oidc-issuer"
	oidcClientIDFlag = "oidc-client-id"
	failuresFlag     = "failures"
)

var gatewayCmd = &cobra.Command{
	Use:     "gateway",
	Aliases: []string{"g"},
	Short:   "Start a gateway to manage torrents over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
			return err
		}

		if err := setupLogging(); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		addr, err := net.ResolveTCPAddr("tcp", viper.GetString(laddrFlag))
		if err != nil {
			return err
		}

		if port := os.Getenv("PORT"); port != "" {
			log.Debug().Msg("Using port from PORT env variable")

			p, err := strconv.Atoi(port)
			if err != nil {
				return err
			}

			addr.Port = p
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics.Register(registry)

		failures := coordinator.NewFailureLog(viper.GetInt(failuresFlag))

		s, err := openSession(failures.Add, ctx)
		if err != nil {
			return err
		}

		gateway := server.NewGateway(
			addr.String(),
			viper.GetString(apiUsernameFlag),
			viper.GetString(apiPasswordFlag),
			viper.GetString(oidcIssuerFlag),
			viper.GetString(oidcClientIDFlag),

			s.cache,
			s.bus,
			failures,
			registry,

			func(stream v1.Stream) {
				log.Debug().
					Int("index", stream.Index).
					Int("file", stream.FileIndex).
					Str("name", stream.Name).
					Str("remote", stream.Remote).
					Msg("Streaming")
			},

			ctx,
		)

		if err := gateway.Open(); err != nil {
			_ = s.coordinator.Stop(ctx)

			return err
		}

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigs

			log.Debug().Msg("Gracefully shutting down")

			go func() {
				<-sigs

				log.Debug().Msg("Forcing shutdown")

				cancel()

				os.Exit(1)
			}()

			if err := gateway.Close(); err != nil {
				panic(err)
			}
		}()

		// Refresh in the background so that snapshots stay current without a UI.
		go coordinator.KeepFresh(ctx, s.bus)

		log.Info().
			Str("address", addr.String()).
			Msg("Listening")

		waitErr := gateway.Wait()

		stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stopCancel()

		if err := s.coordinator.Stop(stopCtx); err != nil {
			log.Error().
				Err(err).
				Msg("Could not shut down engine cleanly")

			if waitErr == nil {
				return err
			}
		}

		return waitErr
	},
}

func init() {
	addSessionFlags(gatewayCmd)

	gatewayCmd.PersistentFlags().StringP(laddrFlag, "l", ":1337", "Listening address")
	gatewayCmd.PersistentFlags().String(apiUsernameFlag, "admin", "Username for the management API (can also be set using the API_USERNAME env variable). Ignored if any of the OIDC parameters are set.")
	gatewayCmd.PersistentFlags().String(apiPasswordFlag, "", "Password for the management API (can also be set using the API_PASSWORD env variable). Ignored if any of the OIDC parameters are set.")
	gatewayCmd.PersistentFlags().String(oidcIssuerFlag, "", "OIDC Issuer (i.e. https://pojntfx.eu.auth0.com/) (can also be set using the OIDC_ISSUER env variable)")
	gatewayCmd.PersistentFlags().String(oidcClientIDFlag, "", "OIDC Client ID (i.e. myoidcclientid) (can also be set using the OIDC_CLIENT_ID env variable)")
	gatewayCmd.PersistentFlags().Int(failuresFlag, 100, "Number of recent failures to keep")

	viper.AutomaticEnv()

	rootCmd.AddCommand(gatewayCmd)
}
