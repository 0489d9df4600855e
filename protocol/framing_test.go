package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameHeaderIsLittleEndian(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("abc")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	want := []byte{0x03, 0x00, 0x00, 0x00, 'a', 'b', 'c'}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("frame mismatch: got %x, want %x", buf.Bytes(), want)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		[]byte("x"),
		bytes.Repeat([]byte{0xab}, 70000),
	}
	var buf bytes.Buffer
	for _, p := range payloads {
		if err := WriteFrame(&buf, p); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	for _, p := range payloads {
		got, err := ReadFrame(&buf, DefaultMaxFrameBytes)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if !bytes.Equal(got, p) {
			t.Fatalf("payload mismatch: got %d bytes, want %d", len(got), len(p))
		}
	}
	if _, err := ReadFrame(&buf, DefaultMaxFrameBytes); !errors.Is(err, io.EOF) {
		t.Fatalf("expected clean EOF after last frame, got %v", err)
	}
}

func TestReadFrameRejectsOversize(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, bytes.Repeat([]byte{1}, 100)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := ReadFrame(&buf, 99); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("truncated payload")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	short := buf.Bytes()[:buf.Len()-5]
	if _, err := ReadFrame(bytes.NewReader(short), 0); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestReadFrameTruncatedHeader(t *testing.T) {
	if _, err := ReadFrame(bytes.NewReader([]byte{0x01, 0x00}), 0); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestReadWriteMessages(t *testing.T) {
	var buf bytes.Buffer
	resp := &Response{Field: &ResponseSettings{Settings: Settings{ChannelID: 11}}}
	if err := WriteResponse(&buf, resp); err != nil {
		t.Fatalf("write response failed: %v", err)
	}
	req := &Request{User: 5, Message: &RequestCommand{Command: "/files"}}
	if err := WriteRequest(&buf, req); err != nil {
		t.Fatalf("write request failed: %v", err)
	}

	gotResp, err := ReadResponse(&buf, DefaultMaxFrameBytes)
	if err != nil {
		t.Fatalf("read response failed: %v", err)
	}
	s, ok := gotResp.Field.(*ResponseSettings)
	if !ok || s.Settings.ChannelID != 11 {
		t.Fatalf("unexpected response: %#v", gotResp.Field)
	}
	gotReq, err := ReadRequest(&buf, DefaultMaxFrameBytes)
	if err != nil {
		t.Fatalf("read request failed: %v", err)
	}
	c, ok := gotReq.Message.(*RequestCommand)
	if !ok || c.Command != "/files" || gotReq.User != 5 {
		t.Fatalf("unexpected request: %#v", gotReq)
	}
}

func TestReadFrameEmptyPayloadDecodesNoOp(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResponse(&buf, &Response{}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	got, err := ReadResponse(&buf, DefaultMaxFrameBytes)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got.Field != nil {
		t.Fatalf("expected no-op frame, got %#v", got.Field)
	}
}
