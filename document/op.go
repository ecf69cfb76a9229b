// Package document holds the rich-text article body: an ordered list of
// insert operations, its serialized form, and the projections built on it
// (plain-text preview and sanitized markup).
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Embed kinds understood by the renderer. Other kinds are kept on parse
// and skipped on render.
const (
	EmbedImage = "image"
	EmbedVideo = "video"
)

// ListKind is the value of the list block attribute.
type ListKind string

const (
	ListOrdered ListKind = "ordered"
	ListBullet  ListKind = "bullet"
)

// Align is the value of the align block attribute.
type Align string

const (
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// Embed is a reference to media placed in the document.
type Embed struct {
	Kind  string
	Value string
}

// Attributes is the closed set of formatting keys an op may carry.
// Keys outside the set, and known keys holding a value of the wrong type,
// land in Extra as compact JSON so they survive a round trip.
type Attributes struct {
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	Link      string
	Color     string
	Header    int
	List      ListKind
	Align     Align
	Extra     map[string]json.RawMessage
}

// inlineStyle is the comparable subset of Attributes that shapes inline runs.
type inlineStyle struct {
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	Link      string
	Color     string
}

func (a Attributes) inline() inlineStyle {
	return inlineStyle{
		Bold:      a.Bold,
		Italic:    a.Italic,
		Underline: a.Underline,
		Strike:    a.Strike,
		Link:      a.Link,
		Color:     a.Color,
	}
}

// Op is one unit of content: a text insertion, or an embed when Embed is set.
type Op struct {
	Text       string
	Embed      *Embed
	Attributes Attributes
}

// IsEmbed reports whether the op references media instead of text.
func (o Op) IsEmbed() bool {
	return o.Embed != nil
}

// Document is the ordered sequence of ops making up an article body.
type Document struct {
	Ops []Op
}

// Empty returns the document substituted for anything that fails to parse.
func Empty() Document {
	return Document{Ops: []Op{{Text: ""}}}
}

// IsEmpty reports whether d carries no content: it has no ops, or it is
// exactly the Empty document.
func (d Document) IsEmpty() bool {
	if len(d.Ops) == 0 {
		return true
	}
	return len(d.Ops) == 1 && opEqual(d.Ops[0], Op{Text: ""})
}

// Equal reports whether two documents hold the same ops in the same order.
func (d Document) Equal(other Document) bool {
	if len(d.Ops) != len(other.Ops) {
		return false
	}
	for i := range d.Ops {
		if !opEqual(d.Ops[i], other.Ops[i]) {
			return false
		}
	}
	return true
}

func opEqual(a, b Op) bool {
	if a.Text != b.Text || a.IsEmbed() != b.IsEmbed() {
		return false
	}
	if a.IsEmbed() && *a.Embed != *b.Embed {
		return false
	}
	x, y := a.Attributes, b.Attributes
	if x.inline() != y.inline() || x.Header != y.Header || x.List != y.List || x.Align != y.Align {
		return false
	}
	if len(x.Extra) != len(y.Extra) {
		return false
	}
	for k, v := range x.Extra {
		w, ok := y.Extra[k]
		if !ok || !bytes.Equal(v, w) {
			return false
		}
	}
	return true
}

// String summarises the document for logs.
func (d Document) String() string {
	embeds := 0
	for _, op := range d.Ops {
		if op.IsEmbed() {
			embeds++
		}
	}
	return fmt.Sprintf("document(%d ops, %d embeds)", len(d.Ops), embeds)
}
