package discord

// File is an attachment to upload alongside a message.
type File struct {
	Name string
	Data []byte
}

// EmbedField is one titled field of an outbound embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// MessageEmbed is a platform-neutral embed. Callers size it within the
// platform limits before handing it over.
type MessageEmbed struct {
	Title       string
	Description string
	Author      string
	Color       uint32
	ImageURL    string
	Fields      []EmbedField
}

// ActivityKind selects the presence activity type.
type ActivityKind int

const (
	ActivityPlaying ActivityKind = iota
	ActivityStreaming
)

// Activity is a presence activity. URL is used for streaming activities only.
type Activity struct {
	Kind ActivityKind
	Name string
	URL  string
}

// InboundAttachment is a file attached to an inbound chat message.
type InboundAttachment struct {
	Filename string
	URL      string
}

// InboundMessage is a chat message delivered by the gateway.
type InboundMessage struct {
	ChannelID   uint64
	AuthorID    uint64
	Content     string
	IsSelf      bool
	IsPrivate   bool
	EmbedTitles []string
	Attachments []InboundAttachment
}

// Session is the sending surface of the chat platform. Implementations must
// be safe for concurrent use.
type Session interface {
	SendMessage(channelID uint64, content string, embed *MessageEmbed) error
	SendFiles(channelID uint64, files []File, content string, embed *MessageEmbed) error
	SetPresence(activity Activity) error
	DownloadAttachment(url string) ([]byte, error)
}
