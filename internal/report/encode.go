package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// JSON writes rep as indented JSON.
func JSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// YAML writes rep as a YAML document.
func YAML(w io.Writer, rep *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// Msgpack writes rep in msgpack; DecodeMsgpack reads it back for re-rendering.
func Msgpack(w io.Writer, rep *Report) error {
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode msgpack: %w", err)
	}
	return nil
}

// DecodeMsgpack reads a report written by Msgpack.
func DecodeMsgpack(r io.Reader) (*Report, error) {
	var rep Report
	if err := msgpack.NewDecoder(r).Decode(&rep); err != nil {
		return nil, fmt.Errorf("decode msgpack: %w", err)
	}
	if rep.Schema != SchemaVersion {
		return nil, fmt.Errorf("unsupported report schema %d (want %d)", rep.Schema, SchemaVersion)
	}
	return &rep, nil
}
