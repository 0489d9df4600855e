package bridge

import (
	"regexp"
	"strings"

	"github.com/discordshim/discordshim/discord"
	"github.com/discordshim/discordshim/embeds"
	"github.com/discordshim/discordshim/observability"
	"github.com/discordshim/discordshim/protocol"
)

var mentionRE = regexp.MustCompile(`<@[0-9A-Za-z]*>`)

// extractMentions collects raw mention tokens from the title, then the
// description. Each token is followed by a single space.
func extractMentions(title, description string) string {
	var b strings.Builder
	for _, m := range mentionRE.FindAllString(title, -1) {
		b.WriteString(m)
		b.WriteByte(' ')
	}
	for _, m := range mentionRE.FindAllString(description, -1) {
		b.WriteString(m)
		b.WriteByte(' ')
	}
	return b.String()
}

// dispatch routes one decoded downstream frame. Platform errors are logged
// and the connection stays up; only stream-level errors tear it down.
func (s *Server) dispatch(in *instance, resp *protocol.Response) {
	switch f := resp.Field.(type) {
	case nil:
		s.obs.Dispatch(observability.DispatchNone, observability.DispatchResultOK)
	case *protocol.ResponseSettings:
		in.applySettings(&f.Settings)
		s.log.Debug().Str("peer", in.addr).Uint64("channel", f.Settings.ChannelID).Msg("settings applied")
		s.obs.Dispatch(observability.DispatchSettings, observability.DispatchResultOK)
	case *protocol.ResponsePresence:
		s.dispatchPresence(in, &f.Presence)
	case *protocol.ResponseEmbed:
		s.dispatchEmbed(in, &f.Embed)
	case *protocol.ResponseFile:
		s.dispatchFile(in, &f.File)
	}
}

func (s *Server) dispatchPresence(in *instance, p *protocol.Presence) {
	// Shared deployments advertise the aggregate instance count instead of
	// any single instance's presence text.
	if s.cfg.CloudServer {
		s.obs.Dispatch(observability.DispatchPresence, observability.DispatchResultSuppressed)
		return
	}
	err := s.session.SetPresence(discord.Activity{Kind: discord.ActivityPlaying, Name: p.Presence})
	if err != nil {
		s.log.Error().Str("peer", in.addr).Err(err).Msg("failed to set presence")
		s.obs.Dispatch(observability.DispatchPresence, observability.DispatchResultAPIError)
		return
	}
	s.obs.Dispatch(observability.DispatchPresence, observability.DispatchResultOK)
}

func (s *Server) dispatchEmbed(in *instance, content *protocol.EmbedContent) {
	channel := in.boundChannel()
	for _, e := range embeds.Build(*content) {
		mentions := extractMentions(e.Title, e.Description)
		embed := &discord.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			Author:      e.Author,
			Color:       e.Color,
		}
		for _, f := range e.Fields {
			embed.Fields = append(embed.Fields, discord.EmbedField{Name: f.Title, Value: f.Text, Inline: f.Inline})
		}
		var err error
		if e.Snapshot != nil {
			embed.ImageURL = "attachment://" + e.Snapshot.Filename
			files := []discord.File{{Name: e.Snapshot.Filename, Data: e.Snapshot.Data}}
			err = s.session.SendFiles(channel, files, mentions, embed)
		} else {
			err = s.session.SendMessage(channel, mentions, embed)
		}
		if err != nil {
			s.log.Error().Str("peer", in.addr).Uint64("channel", channel).Err(err).Msg("failed to send embed")
			s.obs.Dispatch(observability.DispatchEmbed, observability.DispatchResultAPIError)
			continue
		}
		s.obs.Dispatch(observability.DispatchEmbed, observability.DispatchResultOK)
	}
}

func (s *Server) dispatchFile(in *instance, file *protocol.ProtoFile) {
	channel := in.boundChannel()
	parts, err := embeds.SplitFile(file.Filename, file.Data)
	if err != nil {
		s.log.Error().Str("peer", in.addr).Str("filename", file.Filename).Err(err).Msg("failed to split file")
		s.obs.Dispatch(observability.DispatchFile, observability.DispatchResultSplitError)
		return
	}
	for _, part := range parts {
		// The chunk name doubles as the message text so parts stay
		// identifiable in the channel history.
		err := s.session.SendFiles(channel, []discord.File{{Name: part.Name, Data: part.Data}}, part.Name, nil)
		if err != nil {
			s.log.Error().Str("peer", in.addr).Str("part", part.Name).Uint64("channel", channel).Err(err).Msg("failed to send file")
			s.obs.Dispatch(observability.DispatchFile, observability.DispatchResultAPIError)
			continue
		}
		s.obs.Dispatch(observability.DispatchFile, observability.DispatchResultOK)
	}
}
