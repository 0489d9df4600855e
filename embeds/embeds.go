package embeds

import (
	"github.com/discordshim/discordshim/protocol"
)

// Discord embed limits. All lengths are measured in bytes.
const (
	maxTitle       = 256
	maxDescription = 4096
	maxFields      = 25
	maxFieldValue  = 1024
	maxAuthor      = 256
	maxEmbedTotal  = 6000
)

// zeroWidthSpace keeps otherwise empty descriptions non-empty so the
// platform accepts the embed. Its three bytes count toward the total.
const zeroWidthSpace = "​"

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

// Build subdivides a logical embed into one or more embeds that each satisfy
// the platform limits. The first embed carries the title and snapshot;
// continuation embeds repeat the author and color with a zero-width-space
// description. Field order is preserved.
func Build(content protocol.EmbedContent) []protocol.EmbedContent {
	author := truncate(content.Author, maxAuthor)

	first := protocol.EmbedContent{
		Title:    truncate(content.Title, maxTitle),
		Author:   author,
		Color:    content.Color,
		Snapshot: content.Snapshot,
	}
	if content.Description != "" {
		first.Description = truncate(content.Description, maxDescription)
	} else {
		first.Description = zeroWidthSpace
	}

	var out []protocol.EmbedContent
	last := first
	total := len(last.Title) + len(last.Description) + len(last.Author)
	for _, f := range content.Fields {
		field := protocol.TextField{
			Title:  truncate(f.Title, maxTitle),
			Text:   truncate(f.Text, maxFieldValue),
			Inline: f.Inline,
		}
		next := total + len(field.Title) + len(field.Text)
		if len(last.Fields) >= maxFields || next > maxEmbedTotal {
			out = append(out, last)
			last = protocol.EmbedContent{
				Description: zeroWidthSpace,
				Author:      author,
				Color:       content.Color,
			}
			total = len(last.Description) + len(last.Author)
		}
		last.Fields = append(last.Fields, field)
		total += len(field.Title) + len(field.Text)
	}
	return append(out, last)
}
