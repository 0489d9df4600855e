package bridge

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/discordshim/discordshim/discord"
	"github.com/discordshim/discordshim/observability"
	"github.com/discordshim/discordshim/protocol"
)

const (
	statsFilename = "stats.csv"
	statsTrigger  = "/stats"
)

// broadcast marshals the request once and queues it to every instance bound
// to the channel. Channel zero never matches.
func (s *Server) broadcast(channel uint64, req *protocol.Request, kind observability.BroadcastKind) int {
	if channel == 0 {
		s.obs.Broadcast(kind, 0)
		return 0
	}
	frame := req.Marshal()
	sent := 0
	for _, in := range s.reg.snapshot() {
		if in.boundChannel() != channel {
			continue
		}
		if err := in.enqueue(frame); err != nil {
			continue
		}
		sent++
	}
	s.obs.Broadcast(kind, sent)
	s.log.Info().Uint64("channel", channel).Int("instances", sent).Msg("sent message to instances")
	return sent
}

// SendCommand forwards a chat command to every instance bound to the channel.
func (s *Server) SendCommand(channel, user uint64, command string) {
	req := &protocol.Request{User: user, Message: &protocol.RequestCommand{Command: command}}
	s.broadcast(channel, req, observability.BroadcastCommand)
}

// SendFile forwards a file to every instance bound to the channel.
func (s *Server) SendFile(channel, user uint64, filename string, data []byte) {
	req := &protocol.Request{User: user, Message: &protocol.RequestFile{File: protocol.ProtoFile{Filename: filename, Data: data}}}
	s.broadcast(channel, req, observability.BroadcastFile)
}

// SendStats uploads the per-instance counters as a CSV attachment.
func (s *Server) SendStats(channel uint64) {
	data := statsCSV(s.Stats())
	err := s.session.SendFiles(channel, []discord.File{{Name: statsFilename, Data: data}}, "", nil)
	if err != nil {
		s.log.Error().Uint64("channel", channel).Err(err).Msg("failed to send stats")
	}
}

func statsCSV(stats []InstanceStats) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"ip", "num_messages", "total_data"})
	for _, st := range stats {
		_ = w.Write([]string{st.Addr, strconv.FormatUint(st.NumMessages, 10), strconv.FormatUint(st.TotalBytes, 10)})
	}
	w.Flush()
	return buf.Bytes()
}

// HandleMessage routes one inbound chat message. Own messages matter only on
// the health check channel, where a single embed title round-trips as a
// command. Direct messages are dropped.
func (s *Server) HandleMessage(m discord.InboundMessage) {
	if m.IsSelf {
		if m.ChannelID == s.cfg.HealthCheckChannelID && len(m.EmbedTitles) == 1 && m.EmbedTitles[0] != "" {
			s.SendCommand(m.ChannelID, m.AuthorID, m.EmbedTitles[0])
		}
		return
	}
	if m.IsPrivate {
		return
	}
	if m.ChannelID == s.cfg.HealthCheckChannelID && m.Content == statsTrigger {
		s.SendStats(m.ChannelID)
		return
	}
	s.SendCommand(m.ChannelID, m.AuthorID, m.Content)
	for _, att := range m.Attachments {
		data, err := s.session.DownloadAttachment(att.URL)
		if err != nil {
			s.log.Error().Str("filename", att.Filename).Err(err).Msg("failed to download attachment")
			continue
		}
		s.SendFile(m.ChannelID, m.AuthorID, att.Filename, data)
	}
}
