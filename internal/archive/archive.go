// Package archive provides a client for the item archive's search, metadata,
// and download endpoints.
package archive

import (
	"strings"

	"github.com/spf13/cast"
)

// Item is one archive entry: its stable identifier, the raw key/value
// metadata block, and the file variants attached to it.
type Item struct {
	Identifier string
	Metadata   map[string]any
	Files      []File
}

// File describes one file variant of an item. Numeric fields are parsed
// leniently because the archive serves them as strings, numbers, or not at
// all depending on the uploader.
type File struct {
	Name            string
	Format          string
	Source          string
	MimeType        string
	SizeBytes       int64
	DurationSeconds float64
	Width           int
	Height          int
	Bitrate         int64
}

// fileDoc is the wire shape of a file entry. Every field may be a JSON
// string or number.
type fileDoc struct {
	Name    any `json:"name"`
	Format  any `json:"format"`
	Source  any `json:"source"`
	Mime    any `json:"mime"`
	Size    any `json:"size"`
	Length  any `json:"length"`
	Width   any `json:"width"`
	Height  any `json:"height"`
	Bitrate any `json:"bitrate"`
}

func (d fileDoc) toFile() File {
	return File{
		Name:            cast.ToString(d.Name),
		Format:          cast.ToString(d.Format),
		Source:          cast.ToString(d.Source),
		MimeType:        cast.ToString(d.Mime),
		SizeBytes:       cast.ToInt64(d.Size),
		DurationSeconds: parseLength(d.Length),
		Width:           cast.ToInt(d.Width),
		Height:          cast.ToInt(d.Height),
		Bitrate:         cast.ToInt64(d.Bitrate),
	}
}

// parseLength parses a duration that arrives either as seconds ("5400.25",
// 5400) or as a clock string ("1:30:00", "12:34").
func parseLength(v any) float64 {
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return 0
	}
	if !strings.Contains(s, ":") {
		return cast.ToFloat64(s)
	}

	var total float64
	for _, part := range strings.Split(s, ":") {
		total = total*60 + cast.ToFloat64(strings.TrimSpace(part))
	}
	return total
}
