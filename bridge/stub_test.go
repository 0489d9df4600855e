package bridge

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/discordshim/discordshim/discord"
)

type sessionCall struct {
	kind     string // "message", "files" or "presence"
	channel  uint64
	content  string
	embed    *discord.MessageEmbed
	files    []discord.File
	activity discord.Activity
}

// stubSession records calls for assertions. Safe for concurrent use.
type stubSession struct {
	mu        sync.Mutex
	calls     []sessionCall
	sendErr   error
	downloads map[string][]byte
}

func (st *stubSession) SendMessage(channelID uint64, content string, embed *discord.MessageEmbed) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.calls = append(st.calls, sessionCall{kind: "message", channel: channelID, content: content, embed: embed})
	return st.sendErr
}

func (st *stubSession) SendFiles(channelID uint64, files []discord.File, content string, embed *discord.MessageEmbed) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.calls = append(st.calls, sessionCall{kind: "files", channel: channelID, content: content, embed: embed, files: files})
	return st.sendErr
}

func (st *stubSession) SetPresence(activity discord.Activity) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.calls = append(st.calls, sessionCall{kind: "presence", activity: activity})
	return st.sendErr
}

func (st *stubSession) DownloadAttachment(url string) ([]byte, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if data, ok := st.downloads[url]; ok {
		return data, nil
	}
	return nil, errors.New("no such attachment")
}

func (st *stubSession) take() []sessionCall {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]sessionCall, len(st.calls))
	copy(out, st.calls)
	return out
}

func (st *stubSession) reset() {
	st.mu.Lock()
	st.calls = nil
	st.mu.Unlock()
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met: %s", msg)
}

// testServer builds a server around a stub session without binding a listener.
func testServer(t *testing.T, mutate func(*Config)) (*Server, *stubSession) {
	t.Helper()
	st := &stubSession{downloads: map[string][]byte{}}
	cfg := DefaultConfig()
	cfg.Listen = "127.0.0.1:0"
	cfg.HealthCheckChannelID = 999
	if mutate != nil {
		mutate(&cfg)
	}
	srv, err := New(cfg, st)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv, st
}

// pipeInstance returns an instance backed by an in-memory pipe. The returned
// cleanup closes both ends.
func pipeInstance(t *testing.T) (*instance, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	return newInstance(server), client
}
