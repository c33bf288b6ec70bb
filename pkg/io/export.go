package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/capmap/pkg/errors"
	"github.com/matzehuels/capmap/pkg/hierarchy"
)

// WriteJSON encodes h as an indented JSON object in key order. The output
// can be re-imported with [ReadJSON].
//
// encoding/json sorts map keys, so the object is assembled entry by entry.
func WriteJSON(h *hierarchy.Hierarchy, w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, e := range h.Entries() {
		if i > 0 {
			buf.WriteString(",")
		}
		key, err := json.Marshal(e.ID)
		if err != nil {
			return fmt.Errorf("encode key: %w", err)
		}
		kids := e.Children
		if kids == nil {
			kids = []string{}
		}
		val, err := json.Marshal(kids)
		if err != nil {
			return fmt.Errorf("encode children of %q: %w", e.ID, err)
		}
		buf.WriteString("\n  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
	}
	if h.Len() > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// WriteYAML encodes h as a YAML mapping in key order. Leaves are written as
// empty sequences.
func WriteYAML(h *hierarchy.Hierarchy, w io.Writer) error {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range h.Entries() {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, c := range e.Children {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: c})
		}
		m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: e.ID}, seq)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Export writes h to path, choosing the encoder by extension (.json, .yaml
// or .yml).
func Export(h *hierarchy.Hierarchy, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ExportJSON(h, path)
	case ".yaml", ".yml":
		return exportWith(h, path, WriteYAML)
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "unsupported export file %q (want .json, .yaml)", path)
	}
}

// ExportJSON writes h to a JSON file at path.
func ExportJSON(h *hierarchy.Hierarchy, path string) error {
	return exportWith(h, path, WriteJSON)
}

func exportWith(h *hierarchy.Hierarchy, path string, write func(*hierarchy.Hierarchy, io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(h, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
