// Package prefabs parses and writes the engine's JSON documents: prefab
// masters, level files, and entity snapshots. Component order within a
// document is preserved, since it is the attachment order on the entity.
package prefabs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNotPrefab marks a JSON file without a top-level GameObject
	// object. The prefab scanner skips such files silently.
	ErrNotPrefab = errors.New("prefabs: no GameObject object")
	// ErrMissingField marks a GameObject without a name or Components.
	ErrMissingField = errors.New("prefabs: required field missing")
)

// ComponentEntry is one named component body in declaration order.
type ComponentEntry struct {
	Name string
	Body map[string]any
}

// Document is a parsed prefab or snapshot: a named game object with an
// ordered component list.
type Document struct {
	Name       string
	Layer      string
	Components []ComponentEntry
}

// Component returns the body for a component name, or nil.
func (d *Document) Component(name string) map[string]any {
	for _, e := range d.Components {
		if e.Name == name {
			return e.Body
		}
	}
	return nil
}

// Parse decodes a prefab document. The file must hold an object keyed
// GameObject whose value carries name, optional layer, and a nested
// Components object.
func Parse(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("prefabs: parse: %w", err)
	}
	raw, ok := top["GameObject"]
	if !ok {
		return nil, ErrNotPrefab
	}
	return parseGameObject(raw)
}

func parseGameObject(raw json.RawMessage) (*Document, error) {
	var obj struct {
		Name       string                     `json:"name"`
		Layer      string                     `json:"layer"`
		Components map[string]json.RawMessage `json:"Components"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("prefabs: parse GameObject: %w", err)
	}
	if obj.Name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	}
	if obj.Components == nil {
		return nil, fmt.Errorf("%w: Components", ErrMissingField)
	}

	// A second pass over the raw Components object recovers key order,
	// which map decoding discards.
	var compsRaw struct {
		Components json.RawMessage `json:"Components"`
	}
	if err := json.Unmarshal(raw, &compsRaw); err != nil {
		return nil, fmt.Errorf("prefabs: parse Components: %w", err)
	}
	order, err := objectKeyOrder(compsRaw.Components)
	if err != nil {
		return nil, fmt.Errorf("prefabs: component order: %w", err)
	}

	doc := &Document{Name: obj.Name, Layer: obj.Layer}
	for _, name := range order {
		var body map[string]any
		if err := json.Unmarshal(obj.Components[name], &body); err != nil {
			return nil, fmt.Errorf("prefabs: component %s: %w", name, err)
		}
		doc.Components = append(doc.Components, ComponentEntry{Name: name, Body: body})
	}
	return doc, nil
}

// ParseFile reads and parses one prefab file.
func ParseFile(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prefabs: read %s: %w", path, err)
	}
	return Parse(b)
}

// Encode writes the document back out in the prefab/snapshot shape.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"GameObject":{"name":`)
	writeJSON(&buf, d.Name)
	if d.Layer != "" {
		buf.WriteString(`,"layer":`)
		writeJSON(&buf, d.Layer)
	}
	buf.WriteString(`,"Components":{`)
	for i, e := range d.Components {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeJSON(&buf, e.Name)
		buf.WriteByte(':')
		writeJSON(&buf, e.Body)
	}
	buf.WriteString("}}}")

	// Round-trip through Indent so snapshots stay diffable.
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("prefabs: encode %s: %w", d.Name, err)
	}
	return out.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		buf.WriteString("null")
		return
	}
	buf.Write(b)
}

// objectKeyOrder returns the top-level keys of a JSON object in
// declaration order.
func objectKeyOrder(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("not an object")
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("non-string key")
		}
		keys = append(keys, key)
		if err := skipValue(dec); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	if delim == '{' || delim == '[' {
		for dec.More() {
			if err := skipValue(dec); err != nil {
				return err
			}
		}
		_, err := dec.Token() // closing delim
		return err
	}
	return nil
}
