package observability

import (
	"sync"
	"sync/atomic"
)

type FrameDirection string

const (
	FrameRead  FrameDirection = "read"
	FrameWrite FrameDirection = "write"
)

type DispatchKind string

const (
	DispatchNone     DispatchKind = "none"
	DispatchFile     DispatchKind = "file"
	DispatchEmbed    DispatchKind = "embed"
	DispatchPresence DispatchKind = "presence"
	DispatchSettings DispatchKind = "settings"
)

type DispatchResult string

const (
	DispatchResultOK         DispatchResult = "ok"
	DispatchResultSuppressed DispatchResult = "suppressed"
	DispatchResultAPIError   DispatchResult = "api_error"
	DispatchResultSplitError DispatchResult = "split_error"
)

type BroadcastKind string

const (
	BroadcastCommand BroadcastKind = "command"
	BroadcastFile    BroadcastKind = "file"
)

type CloseReason string

const (
	CloseReasonPeerClosed    CloseReason = "peer_closed"
	CloseReasonReadError     CloseReason = "read_error"
	CloseReasonDecodeError   CloseReason = "decode_error"
	CloseReasonFrameTooLarge CloseReason = "frame_too_large"
	CloseReasonWriteError    CloseReason = "write_error"
	CloseReasonServerStopped CloseReason = "server_stopped"
)

type PresenceResult string

const (
	PresenceResultUpdated     PresenceResult = "updated"
	PresenceResultRateLimited PresenceResult = "rate_limited"
	PresenceResultDisabled    PresenceResult = "disabled"
	PresenceResultError       PresenceResult = "error"
)

// BridgeObserver receives bridge-level metric events.
type BridgeObserver interface {
	ConnCount(n int64)
	Frame(direction FrameDirection, bytes int)
	Dispatch(kind DispatchKind, result DispatchResult)
	Broadcast(kind BroadcastKind, recipients int)
	Close(reason CloseReason)
	Presence(result PresenceResult)
}

type noopBridgeObserver struct{}

func (noopBridgeObserver) ConnCount(int64)                       {}
func (noopBridgeObserver) Frame(FrameDirection, int)             {}
func (noopBridgeObserver) Dispatch(DispatchKind, DispatchResult) {}
func (noopBridgeObserver) Broadcast(BroadcastKind, int)          {}
func (noopBridgeObserver) Close(CloseReason)                     {}
func (noopBridgeObserver) Presence(PresenceResult)               {}

// NoopBridgeObserver is a zero-cost observer used when metrics are disabled.
var NoopBridgeObserver BridgeObserver = noopBridgeObserver{}

// AtomicBridgeObserver swaps its delegate at runtime.
type AtomicBridgeObserver struct {
	once sync.Once
	v    atomic.Value
}

type bridgeObserverHolder struct {
	obs BridgeObserver
}

// NewAtomicBridgeObserver returns an initialized atomic observer.
func NewAtomicBridgeObserver() *AtomicBridgeObserver {
	a := &AtomicBridgeObserver{}
	a.once.Do(func() { a.v.Store(&bridgeObserverHolder{obs: NoopBridgeObserver}) })
	return a
}

// Set replaces the delegate, falling back to the no-op observer on nil.
func (a *AtomicBridgeObserver) Set(obs BridgeObserver) {
	if obs == nil {
		obs = NoopBridgeObserver
	}
	a.once.Do(func() { a.v.Store(&bridgeObserverHolder{obs: NoopBridgeObserver}) })
	a.v.Store(&bridgeObserverHolder{obs: obs})
}

func (a *AtomicBridgeObserver) load() BridgeObserver {
	a.once.Do(func() { a.v.Store(&bridgeObserverHolder{obs: NoopBridgeObserver}) })
	return a.v.Load().(*bridgeObserverHolder).obs
}

func (a *AtomicBridgeObserver) ConnCount(n int64) { a.load().ConnCount(n) }
func (a *AtomicBridgeObserver) Frame(direction FrameDirection, bytes int) {
	a.load().Frame(direction, bytes)
}
func (a *AtomicBridgeObserver) Dispatch(kind DispatchKind, result DispatchResult) {
	a.load().Dispatch(kind, result)
}
func (a *AtomicBridgeObserver) Broadcast(kind BroadcastKind, recipients int) {
	a.load().Broadcast(kind, recipients)
}
func (a *AtomicBridgeObserver) Close(reason CloseReason)       { a.load().Close(reason) }
func (a *AtomicBridgeObserver) Presence(result PresenceResult) { a.load().Presence(result) }
