package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/capmap/pkg/errors"
	"github.com/matzehuels/capmap/pkg/hierarchy"
)

// ReadJSON decodes a hierarchy from r.
//
// Two shapes are accepted. The object form maps each identifier to its
// children, and its key order is kept:
//
//	{
//	  "Travel": ["Check-In", "Boarding"],
//	  "Check-In": [],
//	  "Boarding": null
//	}
//
// The array form lists entries explicitly:
//
//	[{"id": "Travel", "children": ["Check-In"]}, {"id": "Check-In"}]
//
// ReadJSON returns an INVALID_FORMAT error for malformed input. Duplicate
// keys and invalid identifiers are reported by the hierarchy builder.
// Structural invariants (single root, no dangling children) are not checked
// here; call Validate on the result. ReadJSON does not close r.
func ReadJSON(r io.Reader, opts ...hierarchy.Option) (*hierarchy.Hierarchy, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode json")
	}

	b := hierarchy.NewBuilder(opts...)
	switch tok {
	case json.Delim('{'):
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode json key")
			}
			id := keyTok.(string)
			var kids []string
			if err := dec.Decode(&kids); err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "children of %q", id)
			}
			if err := b.Add(id, kids...); err != nil {
				return nil, err
			}
		}
	case json.Delim('['):
		for dec.More() {
			var e hierarchy.Entry
			if err := dec.Decode(&e); err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode json entry")
			}
			if err := b.Add(e.ID, e.Children...); err != nil {
				return nil, err
			}
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "expected a json object or array, got %v", tok)
	}
	if _, err := dec.Token(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode json")
	}
	return b.Build()
}

// ReadTOML decodes a hierarchy written as top-level key/array pairs:
//
//	Travel = ["Check-In", "Boarding"]
//	Check-In = []
//	Boarding = []
//
// Document order of the keys is kept.
func ReadTOML(r io.Reader, opts ...hierarchy.Option) (*hierarchy.Hierarchy, error) {
	var raw map[string][]string
	md, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode toml")
	}

	b := hierarchy.NewBuilder(opts...)
	for _, key := range md.Keys() {
		if len(key) != 1 {
			continue
		}
		id := key[0]
		if err := b.Add(id, raw[id]...); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// ReadYAML decodes a hierarchy written as a YAML mapping. A key with no
// value is a leaf:
//
//	Travel: [Check-In, Boarding]
//	Check-In:
//	Boarding:
//
// Document order of the keys is kept.
func ReadYAML(r io.Reader, opts ...hierarchy.Option) (*hierarchy.Hierarchy, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "empty yaml document")
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode yaml")
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "expected a yaml mapping at the top level")
	}

	m := doc.Content[0]
	b := hierarchy.NewBuilder(opts...)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], m.Content[i+1]
		var kids []string
		if val.ShortTag() != "!!null" {
			if err := val.Decode(&kids); err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "children of %q (line %d)", key.Value, val.Line)
			}
		}
		if err := b.Add(key.Value, kids...); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// Import reads a hierarchy file, choosing the decoder by extension
// (.json, .toml, .yaml or .yml).
func Import(path string, opts ...hierarchy.Option) (*hierarchy.Hierarchy, error) {
	read, err := readerFor(path)
	if err != nil {
		return nil, err
	}
	return importWith(path, read, opts)
}

// ImportJSON reads a JSON hierarchy file. See [ReadJSON].
func ImportJSON(path string, opts ...hierarchy.Option) (*hierarchy.Hierarchy, error) {
	return importWith(path, ReadJSON, opts)
}

// ImportTOML reads a TOML hierarchy file. See [ReadTOML].
func ImportTOML(path string, opts ...hierarchy.Option) (*hierarchy.Hierarchy, error) {
	return importWith(path, ReadTOML, opts)
}

// ImportYAML reads a YAML hierarchy file. See [ReadYAML].
func ImportYAML(path string, opts ...hierarchy.Option) (*hierarchy.Hierarchy, error) {
	return importWith(path, ReadYAML, opts)
}

type readFunc func(io.Reader, ...hierarchy.Option) (*hierarchy.Hierarchy, error)

func importWith(path string, read readFunc, opts []hierarchy.Option) (*hierarchy.Hierarchy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return read(f, opts...)
}

func readerFor(path string) (readFunc, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON, nil
	case ".toml":
		return ReadTOML, nil
	case ".yaml", ".yml":
		return ReadYAML, nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported hierarchy file %q (want .json, .toml, .yaml)", path)
	}
}

// SupportedExtensions lists the file extensions [Import] understands.
var SupportedExtensions = []string{".json", ".toml", ".yaml", ".yml"}
