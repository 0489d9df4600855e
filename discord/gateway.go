package discord

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Handler consumes inbound chat messages.
type Handler func(InboundMessage)

// Gateway owns the Discord session and implements Session on top of it.
type Gateway struct {
	session *discordgo.Session
	log     zerolog.Logger
	handler Handler
	httpc   *http.Client
}

// NewGateway builds a gateway for the given bot token. The "Bot " prefix is
// added here; pass the raw token.
func NewGateway(token string, log zerolog.Logger) (*Gateway, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	g := &Gateway{
		session: s,
		log:     log,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
	// Message content is a privileged intent and must also be enabled on
	// the application page.
	s.Identify.Intents = discordgo.IntentsAllWithoutPrivileged | discordgo.IntentMessageContent
	s.AddHandler(g.onReady)
	s.AddHandler(g.onMessageCreate)
	return g, nil
}

// OnMessage sets the inbound message handler. Call it before Open.
func (g *Gateway) OnMessage(h Handler) { g.handler = h }

// Open connects the session. It returns after the gateway reports ready,
// so the current user is known once it succeeds.
func (g *Gateway) Open() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	return nil
}

// Close shuts the gateway connection down.
func (g *Gateway) Close() error { return g.session.Close() }

func (g *Gateway) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	g.log.Info().Str("user", r.User.Username).Msg("discord session ready")
}

func (g *Gateway) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if g.handler == nil || m.Author == nil {
		return
	}
	msg := InboundMessage{
		ChannelID: parseID(m.ChannelID),
		AuthorID:  parseID(m.Author.ID),
		Content:   m.Content,
		IsPrivate: m.GuildID == "",
	}
	if s.State != nil && s.State.User != nil {
		msg.IsSelf = m.Author.ID == s.State.User.ID
	}
	for _, e := range m.Embeds {
		msg.EmbedTitles = append(msg.EmbedTitles, e.Title)
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, InboundAttachment{Filename: a.Filename, URL: a.URL})
	}
	g.handler(msg)
}

func (g *Gateway) SendMessage(channelID uint64, content string, embed *MessageEmbed) error {
	send := &discordgo.MessageSend{Content: content}
	if embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{platformEmbed(embed)}
	}
	_, err := g.session.ChannelMessageSendComplex(formatID(channelID), send)
	return err
}

func (g *Gateway) SendFiles(channelID uint64, files []File, content string, embed *MessageEmbed) error {
	send := &discordgo.MessageSend{Content: content}
	for _, f := range files {
		send.Files = append(send.Files, &discordgo.File{Name: f.Name, Reader: bytes.NewReader(f.Data)})
	}
	if embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{platformEmbed(embed)}
	}
	_, err := g.session.ChannelMessageSendComplex(formatID(channelID), send)
	return err
}

func (g *Gateway) SetPresence(activity Activity) error {
	act := &discordgo.Activity{Name: activity.Name}
	switch activity.Kind {
	case ActivityStreaming:
		act.Type = discordgo.ActivityTypeStreaming
		act.URL = activity.URL
	default:
		act.Type = discordgo.ActivityTypeGame
	}
	return g.session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status:     "online",
		Activities: []*discordgo.Activity{act},
	})
}

func (g *Gateway) DownloadAttachment(url string) ([]byte, error) {
	resp, err := g.httpc.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download attachment: unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func platformEmbed(e *MessageEmbed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       int(e.Color),
	}
	if e.Author != "" {
		out.Author = &discordgo.MessageEmbedAuthor{Name: e.Author}
	}
	if e.ImageURL != "" {
		out.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return out
}

func parseID(id string) uint64 {
	v, _ := strconv.ParseUint(id, 10, 64)
	return v
}

func formatID(id uint64) string { return strconv.FormatUint(id, 10) }
