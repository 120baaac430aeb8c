// Package knowledge loads the knowledge base offered to the model through the
// get_knowledge tool. A base is a JSON document, a text file or a web page.
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fileagent/internal/logging"
)

// ErrEmptySource is returned when no source is given.
var ErrEmptySource = errors.New("knowledge source is empty")

// Kind tells how a base was loaded.
type Kind string

const (
	KindJSON Kind = "json"
	KindText Kind = "text"
	KindURL  Kind = "url"
)

// Entry is one searchable item: an object from a JSON section or a text
// paragraph.
type Entry struct {
	Section string
	Fields  map[string]interface{}
}

// Base is a loaded knowledge base.
type Base struct {
	Source string
	Kind   Kind
	Title  string

	raw     []byte // compact JSON returned to the model
	entries []Entry
	topK    int
}

// Load reads a knowledge base from a .json file, any other local file, or an
// http(s) URL.
func Load(ctx context.Context, source string, opts ...Option) (*Base, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrEmptySource
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var (
		b   *Base
		err error
	)
	switch {
	case isURL(source):
		b, err = loadURL(ctx, source, o)
	case strings.EqualFold(filepath.Ext(source), ".json"):
		b, err = loadJSONFile(source)
	default:
		b, err = loadTextFile(source)
	}
	if err != nil {
		return nil, err
	}
	b.topK = o.topK

	logging.Knowledge("Loaded %s knowledge base from %s (%d entries)", b.Kind, source, len(b.entries))
	return b, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func loadJSONFile(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}
	return ParseJSON(path, data)
}

// ParseJSON builds a base from a JSON document. Objects whose values are
// arrays of objects become searchable sections; any other valid JSON is
// still served whole.
func ParseJSON(source string, data []byte) (*Base, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return nil, fmt.Errorf("invalid knowledge base JSON: %w", err)
	}

	b := &Base{Source: source, Kind: KindJSON, raw: compact.Bytes()}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return b, nil
	}
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var items []map[string]interface{}
		if err := json.Unmarshal(sections[name], &items); err != nil {
			continue
		}
		for _, item := range items {
			b.entries = append(b.entries, Entry{Section: name, Fields: item})
		}
	}
	return b, nil
}

func loadTextFile(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base: %w", err)
	}
	return textBase(path, KindText, filepath.Base(path), string(data))
}

// textBase splits content into paragraph entries.
func textBase(source string, kind Kind, title, content string) (*Base, error) {
	content = strings.TrimSpace(content)
	doc := map[string]string{"source": source, "title": title, "content": content}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	b := &Base{Source: source, Kind: kind, Title: title, raw: raw}
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.entries = append(b.entries, Entry{Section: "content", Fields: map[string]interface{}{"text": para}})
	}
	return b, nil
}

// JSON returns the whole base as compact JSON.
func (b *Base) JSON() string {
	return string(b.raw)
}

// Entries returns the searchable entries.
func (b *Base) Entries() []Entry {
	return b.entries
}

// Lookup answers a tool call. Bases with more entries than the configured
// top-k return only the best matches; otherwise the whole base is returned.
func (b *Base) Lookup(question string) (string, error) {
	if b.topK <= 0 || len(b.entries) <= b.topK {
		return b.JSON(), nil
	}

	hits := b.Search(question, b.topK)
	if len(hits) == 0 {
		logging.Knowledge("Lookup %q: no keyword hits, sending all %d entries", question, len(b.entries))
		return b.JSON(), nil
	}
	grouped := make(map[string][]map[string]interface{})
	for _, e := range hits {
		grouped[e.Section] = append(grouped[e.Section], e.Fields)
	}
	data, err := json.Marshal(grouped)
	if err != nil {
		return "", fmt.Errorf("failed to encode search results: %w", err)
	}
	logging.Knowledge("Lookup %q: %d of %d entries", question, len(hits), len(b.entries))
	return string(data), nil
}
