package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/discordshim/discordshim/protocol"
)

// DefaultAddr is where a locally running bridge listens.
const DefaultAddr = "127.0.0.1:23416"

// DefaultTimeout bounds the whole probe, dial included.
const DefaultTimeout = 30 * time.Second

// maxProbeFrames is how many upstream frames the probe inspects before
// giving up. The echo normally arrives in the first frame; the margin
// absorbs unrelated traffic on the health check channel.
const maxProbeFrames = 5

type Config struct {
	Addr      string        // Bridge TCP address.
	ChannelID uint64        // Health check channel the bridge watches.
	Timeout   time.Duration // Total probe budget.
	Logger    zerolog.Logger
}

// Run executes one probe round trip. It returns nil once the bridge
// echoes the probe token, and an error on any other outcome.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ChannelID == 0 {
		return errors.New("healthcheck: channel id not set")
	}

	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.Addr, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(cfg.Timeout))

	token := uuid.NewString()
	err = protocol.WriteResponse(conn, &protocol.Response{
		Field: &protocol.ResponseSettings{Settings: protocol.Settings{ChannelID: cfg.ChannelID}},
	})
	if err != nil {
		return fmt.Errorf("send settings: %w", err)
	}
	err = protocol.WriteResponse(conn, &protocol.Response{
		Field: &protocol.ResponseEmbed{Embed: protocol.EmbedContent{Title: token}},
	})
	if err != nil {
		return fmt.Errorf("send probe embed: %w", err)
	}
	cfg.Logger.Debug().Str("addr", cfg.Addr).Uint64("channel", cfg.ChannelID).Msg("probe sent")

	for i := 0; i < maxProbeFrames; i++ {
		req, err := protocol.ReadRequest(conn, protocol.DefaultMaxFrameBytes)
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}
		cmd, ok := req.Message.(*protocol.RequestCommand)
		if !ok {
			continue
		}
		if cmd.Command == token {
			cfg.Logger.Debug().Msg("probe token echoed")
			return nil
		}
	}
	return fmt.Errorf("token not echoed within %d frames", maxProbeFrames)
}
