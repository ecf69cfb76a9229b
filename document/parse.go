package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSyntax is returned by Decode when the input is not JSON.
	ErrSyntax = errors.New("document: malformed json")
	// ErrShape is returned by Decode when the JSON is not an op sequence.
	ErrShape = errors.New("document: not an op sequence")
)

// EmptySerialized is the serialized form of Empty().
const EmptySerialized = `{"ops":[{"insert":""}]}`

// Parsed is the outcome of Parse. When Fallback is set the input could not
// be read, Document is Empty() and Cause says why.
type Parsed struct {
	Document Document
	Fallback bool
	Cause    error
}

// Parse reads a serialized body. It never fails: malformed input yields
// the Empty document with Fallback set.
func Parse(serialized string) Parsed {
	doc, err := Decode(serialized)
	if err != nil {
		return Parsed{Document: Empty(), Fallback: true, Cause: err}
	}
	return Parsed{Document: doc}
}

// ParseDocument is Parse without the diagnostics.
func ParseDocument(serialized string) Document {
	return Parse(serialized).Document
}

// Decode reads a serialized body strictly.
func Decode(serialized string) (Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(serialized), &top); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Document{}, fmt.Errorf("%w: top level is %s", ErrShape, typeErr.Value)
		}
		return Document{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	rawOps, ok := top["ops"]
	if !ok || isNull(rawOps) {
		return Document{}, fmt.Errorf("%w: missing ops", ErrShape)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(rawOps, &items); err != nil {
		return Document{}, fmt.Errorf("%w: ops is not an array", ErrShape)
	}

	ops := make([]Op, 0, len(items))
	for i, item := range items {
		op, err := decodeOp(item)
		if err != nil {
			return Document{}, fmt.Errorf("%w: op %d: %v", ErrShape, i, err)
		}
		ops = append(ops, op)
	}
	return Document{Ops: ops}, nil
}

func decodeOp(raw json.RawMessage) (Op, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Op{}, errors.New("not an object")
	}

	var op Op
	for key, value := range fields {
		switch key {
		case "insert":
		case "attributes":
			if isNull(value) {
				continue
			}
			var attrs map[string]json.RawMessage
			if err := json.Unmarshal(value, &attrs); err != nil {
				return Op{}, errors.New("attributes is not an object")
			}
			decoded, err := decodeAttributes(attrs)
			if err != nil {
				return Op{}, err
			}
			op.Attributes = decoded
		default:
			return Op{}, fmt.Errorf("unexpected key %q", key)
		}
	}

	insert, ok := fields["insert"]
	if !ok {
		return Op{}, errors.New("missing insert")
	}
	switch firstByte(insert) {
	case '"':
		if err := json.Unmarshal(insert, &op.Text); err != nil {
			return Op{}, err
		}
	case '{':
		var embed map[string]string
		if err := json.Unmarshal(insert, &embed); err != nil {
			return Op{}, errors.New("embed values must be strings")
		}
		if len(embed) != 1 {
			return Op{}, errors.New("embed must have exactly one kind")
		}
		for kind, value := range embed {
			op.Embed = &Embed{Kind: kind, Value: value}
		}
	default:
		return Op{}, errors.New("insert must be a string or an embed")
	}
	return op, nil
}

func decodeAttributes(raw map[string]json.RawMessage) (Attributes, error) {
	var attrs Attributes
	keep := func(key string, value json.RawMessage) error {
		var buf bytes.Buffer
		if err := json.Compact(&buf, value); err != nil {
			return err
		}
		if attrs.Extra == nil {
			attrs.Extra = make(map[string]json.RawMessage)
		}
		attrs.Extra[key] = json.RawMessage(buf.Bytes())
		return nil
	}

	for key, value := range raw {
		if isNull(value) && isKnownAttribute(key) {
			continue
		}
		var ok bool
		switch key {
		case "bold":
			ok = json.Unmarshal(value, &attrs.Bold) == nil
		case "italic":
			ok = json.Unmarshal(value, &attrs.Italic) == nil
		case "underline":
			ok = json.Unmarshal(value, &attrs.Underline) == nil
		case "strike":
			ok = json.Unmarshal(value, &attrs.Strike) == nil
		case "link":
			ok = json.Unmarshal(value, &attrs.Link) == nil
		case "color":
			ok = json.Unmarshal(value, &attrs.Color) == nil
		case "header":
			var level int
			ok = json.Unmarshal(value, &level) == nil && level >= 1 && level <= 6
			if ok {
				attrs.Header = level
			}
		case "list":
			var kind ListKind
			ok = json.Unmarshal(value, &kind) == nil && (kind == ListOrdered || kind == ListBullet)
			if ok {
				attrs.List = kind
			}
		case "align":
			var align Align
			ok = json.Unmarshal(value, &align) == nil &&
				(align == AlignCenter || align == AlignRight || align == AlignJustify)
			if ok {
				attrs.Align = align
			}
		}
		if !ok {
			if err := keep(key, value); err != nil {
				return Attributes{}, err
			}
		}
	}
	return attrs, nil
}

func isKnownAttribute(key string) bool {
	switch key {
	case "bold", "italic", "underline", "strike", "link", "color", "header", "list", "align":
		return true
	}
	return false
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

type wireOp struct {
	Insert     interface{}                `json:"insert"`
	Attributes map[string]json.RawMessage `json:"attributes,omitempty"`
}

type wireDocument struct {
	Ops []wireOp `json:"ops"`
}

// Serialize writes d in the form Decode reads. Attribute keys come out
// sorted, so equal documents serialize identically.
func Serialize(d Document) string {
	wire := wireDocument{Ops: make([]wireOp, 0, len(d.Ops))}
	for _, op := range d.Ops {
		w := wireOp{Insert: op.Text}
		if op.IsEmbed() {
			w.Insert = map[string]string{op.Embed.Kind: op.Embed.Value}
		}
		w.Attributes = encodeAttributes(op.Attributes)
		wire.Ops = append(wire.Ops, w)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wire); err != nil {
		return EmptySerialized
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func encodeAttributes(a Attributes) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(a.Extra))
	for k, v := range a.Extra {
		out[k] = v
	}
	set := func(key string, value interface{}) {
		b, err := json.Marshal(value)
		if err == nil {
			out[key] = b
		}
	}
	if a.Bold {
		set("bold", true)
	}
	if a.Italic {
		set("italic", true)
	}
	if a.Underline {
		set("underline", true)
	}
	if a.Strike {
		set("strike", true)
	}
	if a.Link != "" {
		set("link", a.Link)
	}
	if a.Color != "" {
		set("color", a.Color)
	}
	if a.Header != 0 {
		set("header", a.Header)
	}
	if a.List != "" {
		set("list", a.List)
	}
	if a.Align != "" {
		set("align", a.Align)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
