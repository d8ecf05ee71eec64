// SPDX-License-Identifier: MPL-2.0

package nest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	// DescriptorEntry is the root-level archive entry holding the descriptor document.
	DescriptorEntry = "fabric.mod.json"
	// JarsPrefix is the namespace nested jars are stored under.
	JarsPrefix = "META-INF/jars/"
	// GeneratedKey is the custom key marking a synthesized descriptor.
	GeneratedKey = "fabric-loom:generated"
	// DescriptorSchemaVersion is the schemaVersion written into synthesized descriptors.
	DescriptorSchemaVersion = 1

	jarsKey      = "jars"
	indentPrefix = ""
	indentUnit   = "  "
)

type (
	// JarRecord is an element of a descriptor's jars array.
	JarRecord struct {
		File string `json:"file"`
	}

	// SyntheticDescriptor is the minimal descriptor generated for a dependency that has none.
	// Field order is the serialized key order.
	SyntheticDescriptor struct {
		SchemaVersion int            `json:"schemaVersion"`
		ID            string         `json:"id"`
		Version       string         `json:"version"`
		Name          string         `json:"name"`
		Custom        map[string]any `json:"custom"`
	}

	// Document is a descriptor object whose top-level key order survives a round trip.
	// Values other than jars are kept as raw JSON and written back unchanged.
	Document struct {
		keys   []string
		fields map[string]json.RawMessage
	}
)

// Synthesize builds the descriptor generated for coordinate c.
func Synthesize(c Coordinate) SyntheticDescriptor {
	return SyntheticDescriptor{
		SchemaVersion: DescriptorSchemaVersion,
		ID:            c.ModID(),
		Version:       c.Version,
		Name:          c.Name,
		Custom:        map[string]any{GeneratedKey: true},
	}
}

// Marshal encodes the descriptor with two-space indentation.
func (d SyntheticDescriptor) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, indentPrefix, indentUnit)
}

// ParseDocument decodes a descriptor document. The input must be a single JSON object.
func ParseDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading document start: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("descriptor must be a JSON object, found %v", tok)
	}

	doc := &Document{fields: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, found %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("reading value of %q: %w", key, err)
		}
		doc.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading document end: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after descriptor object")
	}
	return doc, nil
}

// Keys returns the top-level keys in document order.
func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Has reports whether the document has a top-level key.
func (d *Document) Has(key string) bool {
	_, ok := d.fields[key]
	return ok
}

// Raw returns the raw JSON value of a top-level key.
func (d *Document) Raw(key string) (json.RawMessage, bool) {
	v, ok := d.fields[key]
	return v, ok
}

// Set stores a raw value, keeping the original position of an existing key.
func (d *Document) Set(key string, value json.RawMessage) {
	if _, ok := d.fields[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.fields[key] = value
}

// Jars returns the records of the jars array. A document without jars yields no records.
func (d *Document) Jars() ([]JarRecord, error) {
	raw, err := d.rawJars()
	if err != nil {
		return nil, err
	}
	records := make([]JarRecord, 0, len(raw))
	for i, elem := range raw {
		var rec JarRecord
		if err := json.Unmarshal(elem, &rec); err != nil {
			return nil, fmt.Errorf("jars[%d]: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// AppendJars appends records to the jars array, creating it when absent.
// Existing elements are preserved as-is and in order.
func (d *Document) AppendJars(records ...JarRecord) error {
	jars, err := d.rawJars()
	if err != nil {
		return err
	}
	if jars == nil {
		jars = []json.RawMessage{}
	}
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding jar record: %w", err)
		}
		jars = append(jars, b)
	}

	b, err := json.Marshal(jars)
	if err != nil {
		return fmt.Errorf("encoding jars: %w", err)
	}
	d.Set(jarsKey, b)
	return nil
}

// Marshal encodes the document with two-space indentation in original key order.
func (d *Document) Marshal() ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			compact.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", key, err)
		}
		compact.Write(k)
		compact.WriteByte(':')
		compact.Write(d.fields[key])
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), indentPrefix, indentUnit); err != nil {
		return nil, fmt.Errorf("formatting descriptor: %w", err)
	}
	return out.Bytes(), nil
}

// rawJars returns the jars elements, or nil when the key is absent.
// A present jars value that is not an array is an error.
func (d *Document) rawJars() ([]json.RawMessage, error) {
	raw, ok := d.fields[jarsKey]
	if !ok {
		return nil, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, errors.New("jars must be an array, found null")
	}
	var jars []json.RawMessage
	if err := json.Unmarshal(raw, &jars); err != nil {
		return nil, fmt.Errorf("jars must be an array: %w", err)
	}
	if jars == nil {
		jars = []json.RawMessage{}
	}
	return jars, nil
}
