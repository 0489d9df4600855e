package cmdutil

import (
	"encoding/json"
	"io"
)

// WriteJSON writes v as compact JSON to w, followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
