package protocol

// ProtoFile is a named binary payload carried in both directions.
type ProtoFile struct {
	Filename string
	Data     []byte
}

// TextField is one titled field of an embed.
type TextField struct {
	Title  string
	Text   string
	Inline bool
}

// EmbedContent is a logical embed as produced by a local client. It may
// exceed the platform limits; the embed builder subdivides it before send.
type EmbedContent struct {
	Title       string
	Description string
	Author      string
	Color       uint32
	Snapshot    *ProtoFile // Optional inline image.
	Fields      []TextField
}

// Settings binds an instance to a channel and carries its plugin configuration.
type Settings struct {
	ChannelID       uint64
	CommandPrefix   string
	CycleTime       int32
	PresenceEnabled bool
}

// Presence is a free-form presence text from a single instance.
type Presence struct {
	Presence string
}

// Response is the downstream frame payload (local client to bridge).
// Field holds exactly one variant; nil is a valid no-op frame.
type Response struct {
	Field ResponseField
}

// ResponseField is the closed set of Response variants.
type ResponseField interface {
	isResponseField()
}

type ResponseFile struct {
	File ProtoFile
}

type ResponseEmbed struct {
	Embed EmbedContent
}

type ResponsePresence struct {
	Presence Presence
}

type ResponseSettings struct {
	Settings Settings
}

func (*ResponseFile) isResponseField()     {}
func (*ResponseEmbed) isResponseField()    {}
func (*ResponsePresence) isResponseField() {}
func (*ResponseSettings) isResponseField() {}

// Request is the upstream frame payload (bridge to local client).
// Message holds at most one variant.
type Request struct {
	User    uint64
	Message RequestMessage
}

// RequestMessage is the closed set of Request variants.
type RequestMessage interface {
	isRequestMessage()
}

type RequestCommand struct {
	Command string
}

type RequestFile struct {
	File ProtoFile
}

func (*RequestCommand) isRequestMessage() {}
func (*RequestFile) isRequestMessage()    {}
