package report

import (
	"fmt"
	"io"
	"strings"
)

// Format selects a renderer.
type Format uint8

const (
	FormatText Format = iota
	FormatJSON
	FormatYAML
	FormatMsgpack
	FormatMermaid
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatMsgpack:
		return "msgpack"
	case FormatMermaid:
		return "mermaid"
	default:
		return "text"
	}
}

// Ext is the file extension used when output paths are derived from inputs.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	case FormatMsgpack:
		return ".msgpack"
	case FormatMermaid:
		return ".mmd"
	default:
		return ".txt"
	}
}

// Binary reports whether the format must not go to a terminal.
func (f Format) Binary() bool { return f == FormatMsgpack }

// ParseFormat converts a flag value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	case "mermaid", "mmd":
		return FormatMermaid, nil
	default:
		return FormatText, fmt.Errorf("unknown format %q (expected text|json|yaml|msgpack|mermaid)", s)
	}
}

func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Write renders rep to w in format f.
func Write(w io.Writer, rep *Report, f Format) error {
	switch f {
	case FormatJSON:
		return JSON(w, rep)
	case FormatYAML:
		return YAML(w, rep)
	case FormatMsgpack:
		return Msgpack(w, rep)
	case FormatMermaid:
		return Mermaid(w, rep)
	default:
		return Text(w, rep)
	}
}
