package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/discordshim/discordshim/bridge"
	"github.com/discordshim/discordshim/discord"
	"github.com/discordshim/discordshim/internal/cmdutil"
	"github.com/discordshim/discordshim/internal/config"
	"github.com/discordshim/discordshim/internal/logging"
	"github.com/discordshim/discordshim/observability"
	"github.com/discordshim/discordshim/observability/prom"
)

type serveReady struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`

	Listen     string `json:"listen"`
	MetricsURL string `json:"metrics_url,omitempty"`
}

func serveCommand() *cobra.Command {
	listen := cmdutil.EnvString("DISCORDSHIM_LISTEN", bridge.DefaultListenAddr)
	metricsListen := cmdutil.EnvString("DISCORDSHIM_METRICS_LISTEN", "")

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, listen, metricsListen)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&listen, "listen", listen, "TCP address for local instances (env: DISCORDSHIM_LISTEN)")
	flags.StringVar(&metricsListen, "metrics-listen", metricsListen, "listen address for the metrics server (empty disables) (env: DISCORDSHIM_METRICS_LISTEN)")
	return cmd
}

func runServe(cmd *cobra.Command, listen string, metricsListen string) error {
	cfg, err := config.Load()
	if err != nil {
		return &cmdutil.UsageError{Msg: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return &cmdutil.UsageError{Msg: err.Error()}
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return &cmdutil.UsageError{Msg: err.Error()}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	observer := observability.NewAtomicBridgeObserver()

	gw, err := discord.NewGateway(cfg.DiscordToken, log)
	if err != nil {
		return fmt.Errorf("discord session: %w", err)
	}

	bcfg := bridge.DefaultConfig()
	bcfg.Listen = listen
	bcfg.HealthCheckChannelID = cfg.HealthCheckChannelID
	bcfg.CloudServer = cfg.CloudServer
	bcfg.Logger = log
	bcfg.Observer = observer
	srv, err := bridge.New(bcfg, gw)
	if err != nil {
		return err
	}
	gw.OnMessage(srv.HandleMessage)

	// Connect Discord before accepting instances, so a bad token fails
	// fast instead of stranding connected clients.
	if err := gw.Open(); err != nil {
		return fmt.Errorf("discord gateway: %w", err)
	}
	defer func() { _ = gw.Close() }()

	var metricsSrv *http.Server
	var metricsLn net.Listener
	if metricsListen != "" {
		reg := prom.NewRegistry()
		observer.Set(prom.NewBridgeObserver(reg))

		mux := http.NewServeMux()
		mux.Handle("/metrics", prom.Handler(reg))
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok\n"))
		})
		metricsLn, err = net.Listen("tcp", metricsListen)
		if err != nil {
			return fmt.Errorf("metrics listen: %w", err)
		}
		metricsSrv = newHTTPServer(mux)
		go func() {
			if err := metricsSrv.Serve(metricsLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	select {
	case <-srv.Ready():
	case err := <-errCh:
		return err
	}

	// Print a JSON "ready" line for scripts.
	out := serveReady{
		Status:  "ready",
		Version: buildVersion,
		Commit:  buildCommit,
		Date:    buildDate,
		Listen:  srv.Addr(),
	}
	if metricsLn != nil {
		out.MetricsURL = "http://" + metricsLn.Addr().String() + "/metrics"
	}
	_ = cmdutil.WriteJSON(cmd.OutOrStdout(), out)

	err = <-errCh
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsSrv.Shutdown(shutdownCtx)
		cancel()
	}
	return err
}
