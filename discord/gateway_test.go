package discord

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

func testState(selfID string) *discordgo.State {
	st := discordgo.NewState()
	st.User = &discordgo.User{ID: selfID}
	return st
}

func TestOnMessageCreateConversion(t *testing.T) {
	var got InboundMessage
	g := &Gateway{log: zerolog.Nop()}
	g.OnMessage(func(m InboundMessage) { got = m })

	s := &discordgo.Session{State: testState("900")}
	g.onMessageCreate(s, &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "123456789012345678",
		GuildID:   "55",
		Content:   "hello",
		Author:    &discordgo.User{ID: "42"},
		Embeds:    []*discordgo.MessageEmbed{{Title: "probe-token"}},
		Attachments: []*discordgo.MessageAttachment{
			{Filename: "part.gcode", URL: "https://cdn.example/part.gcode"},
		},
	}})

	if got.ChannelID != 123456789012345678 || got.AuthorID != 42 {
		t.Fatalf("id conversion failed: %+v", got)
	}
	if got.IsSelf || got.IsPrivate {
		t.Fatalf("unexpected flags: %+v", got)
	}
	if got.Content != "hello" {
		t.Fatalf("unexpected content: %q", got.Content)
	}
	if len(got.EmbedTitles) != 1 || got.EmbedTitles[0] != "probe-token" {
		t.Fatalf("unexpected embed titles: %v", got.EmbedTitles)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Filename != "part.gcode" {
		t.Fatalf("unexpected attachments: %v", got.Attachments)
	}
}

func TestOnMessageCreateFlagsSelfAndPrivate(t *testing.T) {
	var got InboundMessage
	g := &Gateway{log: zerolog.Nop()}
	g.OnMessage(func(m InboundMessage) { got = m })

	s := &discordgo.Session{State: testState("42")}
	g.onMessageCreate(s, &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "9",
		Content:   "dm",
		Author:    &discordgo.User{ID: "42"},
	}})
	if !got.IsSelf {
		t.Fatal("expected IsSelf for own user id")
	}
	if !got.IsPrivate {
		t.Fatal("expected IsPrivate without a guild id")
	}
}

func TestPlatformEmbedMapping(t *testing.T) {
	e := platformEmbed(&MessageEmbed{
		Title:       "t",
		Description: "d",
		Author:      "octoprint",
		Color:       0x336699,
		ImageURL:    "attachment://cam.jpg",
		Fields:      []EmbedField{{Name: "k", Value: "v", Inline: true}},
	})
	if e.Title != "t" || e.Description != "d" || e.Color != 0x336699 {
		t.Fatalf("head mismatch: %+v", e)
	}
	if e.Author == nil || e.Author.Name != "octoprint" {
		t.Fatalf("author mismatch: %+v", e.Author)
	}
	if e.Image == nil || e.Image.URL != "attachment://cam.jpg" {
		t.Fatalf("image mismatch: %+v", e.Image)
	}
	if len(e.Fields) != 1 || e.Fields[0].Name != "k" || !e.Fields[0].Inline {
		t.Fatalf("fields mismatch: %+v", e.Fields)
	}

	bare := platformEmbed(&MessageEmbed{Title: "only"})
	if bare.Author != nil || bare.Image != nil {
		t.Fatalf("expected empty author and image to stay nil: %+v", bare)
	}
}

func TestDownloadAttachment(t *testing.T) {
	payload := []byte("gcode contents")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	g := &Gateway{httpc: srv.Client()}
	got, err := g.DownloadAttachment(srv.URL + "/part.gcode")
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("unexpected body: %q", got)
	}
	if _, err := g.DownloadAttachment(srv.URL + "/missing"); err == nil {
		t.Fatal("expected error for missing attachment")
	}
}
