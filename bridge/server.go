package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/discordshim/discordshim/discord"
	"github.com/discordshim/discordshim/observability"
	"github.com/discordshim/discordshim/protocol"
)

// DefaultListenAddr is where the bridge accepts local clients.
const DefaultListenAddr = "0.0.0.0:23416"

type Config struct {
	Listen               string // TCP address for local clients.
	HealthCheckChannelID uint64 // Channel of the health check probe and stats trigger.
	CloudServer          bool   // Shared deployment: aggregate presence only, per-instance presence suppressed.

	MaxFrameBytes    int           // Max bytes for a single frame payload.
	PresenceInterval time.Duration // Minimum gap between aggregate presence updates.

	Logger   zerolog.Logger               // Structured server logs.
	Observer observability.BridgeObserver // Optional metrics observer.
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Listen:           DefaultListenAddr,
		MaxFrameBytes:    protocol.DefaultMaxFrameBytes,
		PresenceInterval: time.Minute,
		Logger:           zerolog.Nop(),
		Observer:         observability.NoopBridgeObserver,
	}
}

// Server accepts local client connections and bridges them to the chat
// platform session.
type Server struct {
	cfg     Config
	session discord.Session
	log     zerolog.Logger
	obs     observability.BridgeObserver

	reg      registry
	presence presenceUpdater

	mu       sync.Mutex // Guards the listener.
	ln       net.Listener
	readyCh  chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New validates the configuration and builds a server.
func New(cfg Config, session discord.Session) (*Server, error) {
	if session == nil {
		return nil, errors.New("bridge: nil session")
	}
	if cfg.Listen == "" {
		cfg.Listen = DefaultListenAddr
	}
	if cfg.MaxFrameBytes <= 0 {
		cfg.MaxFrameBytes = protocol.DefaultMaxFrameBytes
	}
	if cfg.PresenceInterval <= 0 {
		cfg.PresenceInterval = time.Minute
	}
	if cfg.Observer == nil {
		cfg.Observer = observability.NoopBridgeObserver
	}
	s := &Server{
		cfg:     cfg,
		session: session,
		log:     cfg.Logger,
		obs:     cfg.Observer,
		readyCh: make(chan struct{}),
		stopCh:  make(chan struct{}),
	}
	s.presence = presenceUpdater{
		session:  session,
		enabled:  cfg.CloudServer,
		interval: cfg.PresenceInterval,
		log:      cfg.Logger,
		obs:      cfg.Observer,
	}
	return s, nil
}

// Run binds the listener and serves connections until ctx is cancelled or
// Close is called. It returns nil on a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.ln != nil {
		s.mu.Unlock()
		return errors.New("bridge: server already running")
	}
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("listen %s: %w", s.cfg.Listen, err)
	}
	s.ln = ln
	s.mu.Unlock()
	close(s.readyCh)
	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening for instances")

	go func() {
		select {
		case <-ctx.Done():
		case <-s.stopCh:
		}
		_ = ln.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				err = nil
			case <-s.stopCh:
				err = nil
			default:
			}
			s.closeInstances()
			wg.Wait()
			if err != nil {
				return fmt.Errorf("accept: %w", err)
			}
			return nil
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} { return s.readyCh }

// Addr returns the bound listener address, empty before Ready.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Close stops the accept loop and disconnects all instances. Safe to call
// more than once.
func (s *Server) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Stats returns a snapshot of the per-instance counters, newest first.
func (s *Server) Stats() []InstanceStats { return s.reg.stats() }

// Count returns the connected instance count.
func (s *Server) Count() int { return s.reg.count() }

func (s *Server) closeInstances() {
	for _, in := range s.reg.snapshot() {
		in.closing.Store(true)
		s.obs.Close(observability.CloseReasonServerStopped)
		_ = in.conn.Close()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	in := newInstance(conn)
	s.log.Info().Str("peer", in.addr).Msg("instance connected")
	s.reg.add(in)
	count := s.reg.count()
	s.obs.ConnCount(int64(count))
	s.presence.update(count)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.readLoop(in)
	}()
	go func() {
		defer wg.Done()
		s.writeLoop(in)
	}()
	wg.Wait()

	_ = conn.Close()
	s.reg.remove(in)
	count = s.reg.count()
	s.obs.ConnCount(int64(count))
	s.presence.update(count)
	s.log.Info().Str("peer", in.addr).Msg("instance disconnected")
}

// readLoop decodes frames and dispatches them until the stream ends. Any
// read or decode error is terminal for the connection.
func (s *Server) readLoop(in *instance) {
	defer in.closeQueue()
	for {
		payload, err := protocol.ReadFrame(in.conn, s.cfg.MaxFrameBytes)
		if err != nil {
			if in.closing.Load() {
				return
			}
			switch {
			case errors.Is(err, io.EOF):
				s.obs.Close(observability.CloseReasonPeerClosed)
				s.log.Debug().Str("peer", in.addr).Msg("instance closed the connection")
			case errors.Is(err, protocol.ErrFrameTooLarge):
				s.obs.Close(observability.CloseReasonFrameTooLarge)
				s.log.Warn().Str("peer", in.addr).Err(err).Msg("dropping instance")
			default:
				s.obs.Close(observability.CloseReasonReadError)
				s.log.Debug().Str("peer", in.addr).Err(err).Msg("read failed")
			}
			return
		}
		s.obs.Frame(observability.FrameRead, len(payload))
		in.recordInbound(len(payload))

		resp, err := protocol.UnmarshalResponse(payload)
		if err != nil {
			s.obs.Close(observability.CloseReasonDecodeError)
			s.log.Warn().Str("peer", in.addr).Err(err).Msg("undecodable frame, dropping instance")
			return
		}
		s.dispatch(in, resp)
	}
}

// writeLoop drains the outbound queue. On a write error it kicks the reader
// off its blocking read so both loops unwind.
func (s *Server) writeLoop(in *instance) {
	for {
		frame, err := in.next()
		if err != nil {
			return
		}
		if err := protocol.WriteFrame(in.conn, frame); err != nil {
			in.closing.Store(true)
			s.obs.Close(observability.CloseReasonWriteError)
			s.log.Debug().Str("peer", in.addr).Err(err).Msg("write failed")
			in.closeQueue()
			_ = in.conn.SetReadDeadline(time.Now())
			return
		}
		s.obs.Frame(observability.FrameWrite, len(frame))
	}
}
