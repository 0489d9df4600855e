package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Frame layout: a 4-byte little-endian payload length, then the payload.
const frameHeaderLen = 4

// DefaultMaxFrameBytes bounds a single frame payload. Senders chunk large
// uploads well below this, so anything bigger is a framing error.
const DefaultMaxFrameBytes = 64 << 20

var ErrFrameTooLarge = errors.New("frame exceeds maximum length")

// WriteFrame writes one length-prefixed frame. The header and payload are
// written separately so a partial failure surfaces on the first syscall.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}
	var hdr [frameHeaderLen]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-prefixed frame. maxLen <= 0 means no limit.
// io.EOF is returned only on a clean end of stream at a frame boundary;
// a stream truncated mid-frame yields io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader, maxLen int) ([]byte, error) {
	var hdr [frameHeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if maxLen > 0 && uint64(n) > uint64(maxLen) {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}

// WriteResponse frames and writes a downstream message.
func WriteResponse(w io.Writer, m *Response) error {
	return WriteFrame(w, m.Marshal())
}

// ReadResponse reads and decodes one downstream message.
func ReadResponse(r io.Reader, maxLen int) (*Response, error) {
	payload, err := ReadFrame(r, maxLen)
	if err != nil {
		return nil, err
	}
	return UnmarshalResponse(payload)
}

// WriteRequest frames and writes an upstream message.
func WriteRequest(w io.Writer, m *Request) error {
	return WriteFrame(w, m.Marshal())
}

// ReadRequest reads and decodes one upstream message.
func ReadRequest(r io.Reader, maxLen int) (*Request, error) {
	payload, err := ReadFrame(r, maxLen)
	if err != nil {
		return nil, err
	}
	return UnmarshalRequest(payload)
}
