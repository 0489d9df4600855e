package main

import (
	"github.com/spf13/cobra"

	"github.com/discordshim/discordshim/healthcheck"
	"github.com/discordshim/discordshim/internal/cmdutil"
	"github.com/discordshim/discordshim/internal/logging"
)

func healthcheckCommand() *cobra.Command {
	addr := cmdutil.EnvString("DISCORDSHIM_ADDR", healthcheck.DefaultAddr)
	timeout, timeoutErr := cmdutil.EnvDuration("DISCORDSHIM_HEALTHCHECK_TIMEOUT", healthcheck.DefaultTimeout)

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe a locally running bridge",
		Long: "Probe a locally running bridge by connecting as an instance and\n" +
			"waiting for a token to make the round trip through the chat platform.\n" +
			"Exits 0 when the bridge echoes the token.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if timeoutErr != nil {
				return cmdutil.Usagef("invalid DISCORDSHIM_HEALTHCHECK_TIMEOUT: %v", timeoutErr)
			}
			channelID, err := cmdutil.EnvUint64("HEALTH_CHECK_CHANNEL_ID", 0)
			if err != nil {
				return cmdutil.Usagef("invalid HEALTH_CHECK_CHANNEL_ID: %v", err)
			}
			if channelID == 0 {
				return cmdutil.Usagef("HEALTH_CHECK_CHANNEL_ID is not set")
			}
			log, err := logging.New(
				cmdutil.EnvString("DISCORDSHIM_LOG_LEVEL", "info"),
				cmdutil.EnvString("DISCORDSHIM_LOG_FORMAT", "json"),
				cmd.ErrOrStderr(),
			)
			if err != nil {
				return &cmdutil.UsageError{Msg: err.Error()}
			}
			return healthcheck.Run(cmd.Context(), healthcheck.Config{
				Addr:      addr,
				ChannelID: channelID,
				Timeout:   timeout,
				Logger:    log,
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", addr, "bridge TCP address (env: DISCORDSHIM_ADDR)")
	flags.DurationVar(&timeout, "timeout", timeout, "total probe budget (env: DISCORDSHIM_HEALTHCHECK_TIMEOUT)")
	return cmd
}
