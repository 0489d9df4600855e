package embeds

import (
	"archive/zip"
	"bytes"
	"fmt"
)

const (
	chunkBytes         = 1024 * 1024
	maxAttachmentBytes = 5 * chunkBytes
)

// Attachment is one uploadable part of a possibly oversized file.
type Attachment struct {
	Name string
	Data []byte
}

// SplitFile prepares a file for upload. Files under the attachment limit
// pass through unchanged. Anything larger is wrapped in an uncompressed zip
// archive and cut into numbered 1 MiB parts; concatenating the parts in
// order restores the archive.
func SplitFile(filename string, data []byte) ([]Attachment, error) {
	if len(data) < maxAttachmentBytes {
		return []Attachment{{Name: filename, Data: data}}, nil
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.CreateHeader(&zip.FileHeader{Name: filename, Method: zip.Store})
	if err != nil {
		return nil, fmt.Errorf("create archive entry: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return nil, fmt.Errorf("write archive entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish archive: %w", err)
	}

	archive := buf.Bytes()
	parts := make([]Attachment, 0, (len(archive)+chunkBytes-1)/chunkBytes)
	for i := 0; len(archive) > 0; i++ {
		n := chunkBytes
		if n > len(archive) {
			n = len(archive)
		}
		chunk := make([]byte, n)
		copy(chunk, archive[:n])
		archive = archive[n:]
		parts = append(parts, Attachment{
			Name: fmt.Sprintf("%s.zip.%03d", filename, i),
			Data: chunk,
		})
	}
	return parts, nil
}
