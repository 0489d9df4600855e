package protocol

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers are the wire contract shared with the plugin side.
// They must never be renumbered.
const (
	fileFilenameNum = 1
	fileDataNum     = 2

	fieldTitleNum  = 1
	fieldTextNum   = 2
	fieldInlineNum = 3

	embedTitleNum       = 1
	embedDescriptionNum = 2
	embedAuthorNum      = 3
	embedColorNum       = 4
	embedSnapshotNum    = 5
	embedFieldNum       = 6

	settingsChannelNum  = 1
	settingsPrefixNum   = 2
	settingsCycleNum    = 3
	settingsPresenceNum = 4

	presenceTextNum = 1

	responseFileNum     = 1
	responseEmbedNum    = 2
	responsePresenceNum = 3
	responseSettingsNum = 4

	requestUserNum    = 1
	requestCommandNum = 2
	requestFileNum    = 3
)

// Marshal encodes the message in protobuf wire format. Scalar fields follow
// proto3 implicit presence; the variant field is emitted whenever set, even
// if the inner message is empty.
func (m *Response) Marshal() []byte {
	var b []byte
	switch f := m.Field.(type) {
	case nil:
	case *ResponseFile:
		b = appendMessage(b, responseFileNum, appendProtoFile(nil, &f.File))
	case *ResponseEmbed:
		b = appendMessage(b, responseEmbedNum, appendEmbedContent(nil, &f.Embed))
	case *ResponsePresence:
		b = appendMessage(b, responsePresenceNum, appendPresence(nil, &f.Presence))
	case *ResponseSettings:
		b = appendMessage(b, responseSettingsNum, appendSettings(nil, &f.Settings))
	}
	return b
}

// Marshal encodes the message in protobuf wire format.
func (m *Request) Marshal() []byte {
	var b []byte
	if m.User != 0 {
		b = protowire.AppendTag(b, requestUserNum, protowire.VarintType)
		b = protowire.AppendVarint(b, m.User)
	}
	switch f := m.Message.(type) {
	case nil:
	case *RequestCommand:
		b = protowire.AppendTag(b, requestCommandNum, protowire.BytesType)
		b = protowire.AppendString(b, f.Command)
	case *RequestFile:
		b = appendMessage(b, requestFileNum, appendProtoFile(nil, &f.File))
	}
	return b
}

// UnmarshalResponse decodes a downstream frame payload. Unknown fields are
// skipped; for repeated variant fields the last one wins.
func UnmarshalResponse(data []byte) (*Response, error) {
	m := &Response{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == responseFileNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			f := &ResponseFile{}
			if err := unmarshalProtoFile(v, &f.File); err != nil {
				return nil, err
			}
			m.Field = f
			data = data[n:]
		case num == responseEmbedNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			f := &ResponseEmbed{}
			if err := unmarshalEmbedContent(v, &f.Embed); err != nil {
				return nil, err
			}
			m.Field = f
			data = data[n:]
		case num == responsePresenceNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			f := &ResponsePresence{}
			if err := unmarshalPresence(v, &f.Presence); err != nil {
				return nil, err
			}
			m.Field = f
			data = data[n:]
		case num == responseSettingsNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			f := &ResponseSettings{}
			if err := unmarshalSettings(v, &f.Settings); err != nil {
				return nil, err
			}
			m.Field = f
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return m, nil
}

// UnmarshalRequest decodes an upstream frame payload.
func UnmarshalRequest(data []byte) (*Request, error) {
	m := &Request{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == requestUserNum && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			m.User = v
			data = data[n:]
		case num == requestCommandNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			m.Message = &RequestCommand{Command: v}
			data = data[n:]
		case num == requestFileNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			f := &RequestFile{}
			if err := unmarshalProtoFile(v, &f.File); err != nil {
				return nil, err
			}
			m.Message = f
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return m, nil
}

func appendMessage(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

func appendProtoFile(b []byte, m *ProtoFile) []byte {
	if m.Filename != "" {
		b = protowire.AppendTag(b, fileFilenameNum, protowire.BytesType)
		b = protowire.AppendString(b, m.Filename)
	}
	if len(m.Data) > 0 {
		b = protowire.AppendTag(b, fileDataNum, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Data)
	}
	return b
}

func unmarshalProtoFile(data []byte, m *ProtoFile) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == fileFilenameNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Filename = v
			data = data[n:]
		case num == fileDataNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Data = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func appendTextField(b []byte, m *TextField) []byte {
	if m.Title != "" {
		b = protowire.AppendTag(b, fieldTitleNum, protowire.BytesType)
		b = protowire.AppendString(b, m.Title)
	}
	if m.Text != "" {
		b = protowire.AppendTag(b, fieldTextNum, protowire.BytesType)
		b = protowire.AppendString(b, m.Text)
	}
	if m.Inline {
		b = protowire.AppendTag(b, fieldInlineNum, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	return b
}

func unmarshalTextField(data []byte, m *TextField) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == fieldTitleNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Title = v
			data = data[n:]
		case num == fieldTextNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Text = v
			data = data[n:]
		case num == fieldInlineNum && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Inline = protowire.DecodeBool(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func appendEmbedContent(b []byte, m *EmbedContent) []byte {
	if m.Title != "" {
		b = protowire.AppendTag(b, embedTitleNum, protowire.BytesType)
		b = protowire.AppendString(b, m.Title)
	}
	if m.Description != "" {
		b = protowire.AppendTag(b, embedDescriptionNum, protowire.BytesType)
		b = protowire.AppendString(b, m.Description)
	}
	if m.Author != "" {
		b = protowire.AppendTag(b, embedAuthorNum, protowire.BytesType)
		b = protowire.AppendString(b, m.Author)
	}
	if m.Color != 0 {
		b = protowire.AppendTag(b, embedColorNum, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Color))
	}
	if m.Snapshot != nil {
		b = appendMessage(b, embedSnapshotNum, appendProtoFile(nil, m.Snapshot))
	}
	for i := range m.Fields {
		b = appendMessage(b, embedFieldNum, appendTextField(nil, &m.Fields[i]))
	}
	return b
}

func unmarshalEmbedContent(data []byte, m *EmbedContent) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == embedTitleNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Title = v
			data = data[n:]
		case num == embedDescriptionNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Description = v
			data = data[n:]
		case num == embedAuthorNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Author = v
			data = data[n:]
		case num == embedColorNum && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Color = uint32(v)
			data = data[n:]
		case num == embedSnapshotNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			snap := &ProtoFile{}
			if err := unmarshalProtoFile(v, snap); err != nil {
				return err
			}
			m.Snapshot = snap
			data = data[n:]
		case num == embedFieldNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			var f TextField
			if err := unmarshalTextField(v, &f); err != nil {
				return err
			}
			m.Fields = append(m.Fields, f)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func appendSettings(b []byte, m *Settings) []byte {
	if m.ChannelID != 0 {
		b = protowire.AppendTag(b, settingsChannelNum, protowire.VarintType)
		b = protowire.AppendVarint(b, m.ChannelID)
	}
	if m.CommandPrefix != "" {
		b = protowire.AppendTag(b, settingsPrefixNum, protowire.BytesType)
		b = protowire.AppendString(b, m.CommandPrefix)
	}
	if m.CycleTime != 0 {
		b = protowire.AppendTag(b, settingsCycleNum, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(m.CycleTime)))
	}
	if m.PresenceEnabled {
		b = protowire.AppendTag(b, settingsPresenceNum, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	return b
}

func unmarshalSettings(data []byte, m *Settings) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == settingsChannelNum && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.ChannelID = v
			data = data[n:]
		case num == settingsPrefixNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.CommandPrefix = v
			data = data[n:]
		case num == settingsCycleNum && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.CycleTime = int32(v)
			data = data[n:]
		case num == settingsPresenceNum && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.PresenceEnabled = protowire.DecodeBool(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func appendPresence(b []byte, m *Presence) []byte {
	if m.Presence != "" {
		b = protowire.AppendTag(b, presenceTextNum, protowire.BytesType)
		b = protowire.AppendString(b, m.Presence)
	}
	return b
}

func unmarshalPresence(data []byte, m *Presence) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch {
		case num == presenceTextNum && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Presence = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}
