package healthcheck

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/discordshim/discordshim/bridge"
	"github.com/discordshim/discordshim/discord"
)

const testChannel uint64 = 999

// echoSession stands in for the chat platform: when the bridge posts an
// embed it feeds the bot's own message straight back, the way the real
// gateway delivers the bridge's posts as inbound events.
type echoSession struct {
	srv  *bridge.Server
	echo func(s *echoSession, channel uint64, embed *discord.MessageEmbed)
}

func (s *echoSession) SendMessage(channelID uint64, content string, embed *discord.MessageEmbed) error {
	if s.echo != nil && embed != nil {
		s.echo(s, channelID, embed)
	}
	return nil
}

func (s *echoSession) SendFiles(uint64, []discord.File, string, *discord.MessageEmbed) error {
	return nil
}

func (s *echoSession) SetPresence(discord.Activity) error { return nil }

func (s *echoSession) DownloadAttachment(string) ([]byte, error) { return nil, nil }

func startBridge(t *testing.T, session *echoSession) *bridge.Server {
	t.Helper()
	cfg := bridge.DefaultConfig()
	cfg.Listen = "127.0.0.1:0"
	cfg.HealthCheckChannelID = testChannel
	srv, err := bridge.New(cfg, session)
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}
	session.srv = srv
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(context.Background()) }()
	select {
	case <-srv.Ready():
	case err := <-errCh:
		t.Fatalf("bridge exited early: %v", err)
	}
	t.Cleanup(func() {
		srv.Close()
		select {
		case <-errCh:
		case <-time.After(2 * time.Second):
			t.Error("bridge did not stop")
		}
	})
	return srv
}

func TestProbeRoundTrip(t *testing.T) {
	session := &echoSession{echo: func(s *echoSession, channel uint64, embed *discord.MessageEmbed) {
		s.srv.HandleMessage(discord.InboundMessage{
			ChannelID:   channel,
			AuthorID:    42,
			IsSelf:      true,
			EmbedTitles: []string{embed.Title},
		})
	}}
	srv := startBridge(t, session)

	err := Run(context.Background(), Config{Addr: srv.Addr(), ChannelID: testChannel, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
}

func TestProbeSkipsUnrelatedCommands(t *testing.T) {
	session := &echoSession{echo: func(s *echoSession, channel uint64, embed *discord.MessageEmbed) {
		s.srv.SendCommand(channel, 7, "noise one")
		s.srv.SendCommand(channel, 7, "noise two")
		s.srv.SendCommand(channel, 42, embed.Title)
	}}
	srv := startBridge(t, session)

	err := Run(context.Background(), Config{Addr: srv.Addr(), ChannelID: testChannel, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
}

func TestProbeGivesUpAfterFiveFrames(t *testing.T) {
	session := &echoSession{echo: func(s *echoSession, channel uint64, embed *discord.MessageEmbed) {
		for i := 0; i < maxProbeFrames; i++ {
			s.srv.SendCommand(channel, 7, "noise")
		}
	}}
	srv := startBridge(t, session)

	err := Run(context.Background(), Config{Addr: srv.Addr(), ChannelID: testChannel, Timeout: 2 * time.Second})
	if err == nil {
		t.Fatal("expected the probe to give up")
	}
}

func TestProbeTimesOutWithoutEcho(t *testing.T) {
	session := &echoSession{} // swallow the embed, never echo
	srv := startBridge(t, session)

	err := Run(context.Background(), Config{Addr: srv.Addr(), ChannelID: testChannel, Timeout: 200 * time.Millisecond})
	if err == nil {
		t.Fatal("expected a timeout")
	}
}

func TestProbeFailsWhenNothingListens(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	err = Run(context.Background(), Config{Addr: addr, ChannelID: testChannel, Timeout: time.Second})
	if err == nil {
		t.Fatal("expected a dial error")
	}
}

func TestProbeRequiresChannel(t *testing.T) {
	err := Run(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: time.Second})
	if err == nil {
		t.Fatal("expected a configuration error")
	}
}
