package bridge

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/discordshim/discordshim/protocol"
)

var errQueueClosed = errors.New("write queue closed")

// instance is one connected local client.
type instance struct {
	conn net.Conn
	addr string

	// Set when this side initiated the teardown, so the read loop does
	// not report a second close reason.
	closing atomic.Bool

	cfgMu           sync.RWMutex // Guards the settings below.
	channelID       uint64
	commandPrefix   string
	cycleTime       int32
	presenceEnabled bool

	numMessages atomic.Uint64
	totalBytes  atomic.Uint64

	outMu     sync.Mutex // Guards the outbound queue.
	outCond   *sync.Cond
	outQueue  [][]byte
	outHead   int
	outClosed bool
}

func newInstance(conn net.Conn) *instance {
	in := &instance{conn: conn, addr: conn.RemoteAddr().String()}
	in.outCond = sync.NewCond(&in.outMu)
	return in
}

// applySettings replaces the instance configuration. Later frames win.
func (in *instance) applySettings(s *protocol.Settings) {
	in.cfgMu.Lock()
	in.channelID = s.ChannelID
	in.commandPrefix = s.CommandPrefix
	in.cycleTime = s.CycleTime
	in.presenceEnabled = s.PresenceEnabled
	in.cfgMu.Unlock()
}

// boundChannel returns the channel from the last settings frame, zero before
// any arrived.
func (in *instance) boundChannel() uint64 {
	in.cfgMu.RLock()
	defer in.cfgMu.RUnlock()
	return in.channelID
}

func (in *instance) recordInbound(n int) {
	in.numMessages.Add(1)
	in.totalBytes.Add(uint64(n))
}

func (in *instance) stats() InstanceStats {
	return InstanceStats{
		Addr:        in.addr,
		NumMessages: in.numMessages.Load(),
		TotalBytes:  in.totalBytes.Load(),
	}
}

// enqueue appends a frame for the writer goroutine. It never blocks; the
// queue is unbounded.
func (in *instance) enqueue(frame []byte) error {
	in.outMu.Lock()
	if in.outClosed {
		in.outMu.Unlock()
		return errQueueClosed
	}
	in.outQueue = append(in.outQueue, frame)
	in.outMu.Unlock()
	in.outCond.Signal()
	return nil
}

// next blocks until a frame is queued or the queue closes.
func (in *instance) next() ([]byte, error) {
	in.outMu.Lock()
	defer in.outMu.Unlock()
	for {
		if in.outHead < len(in.outQueue) {
			frame := in.outQueue[in.outHead]
			in.outQueue[in.outHead] = nil
			in.outHead++
			// Compact once the consumed prefix dominates the queue.
			if in.outHead > 1024 && in.outHead*2 > len(in.outQueue) {
				n := copy(in.outQueue, in.outQueue[in.outHead:])
				in.outQueue = in.outQueue[:n]
				in.outHead = 0
			}
			return frame, nil
		}
		if in.outClosed {
			return nil, errQueueClosed
		}
		in.outCond.Wait()
	}
}

// closeQueue drops queued frames and wakes the writer. Safe to call twice.
func (in *instance) closeQueue() {
	in.outMu.Lock()
	if !in.outClosed {
		in.outClosed = true
		in.outQueue = nil
		in.outHead = 0
	}
	in.outMu.Unlock()
	in.outCond.Broadcast()
}
