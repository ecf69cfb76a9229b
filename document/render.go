package document

import (
	"bytes"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	dataImagePattern = regexp.MustCompile(`^data:image/(png|jpeg|gif|webp);base64,[A-Za-z0-9+/]+={0,2}$`)
	rgbPattern       = regexp.MustCompile(`^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`)
	hexColorPattern  = regexp.MustCompile(`^#([0-9a-f]{3}|[0-9a-f]{6})$`)
)

type run struct {
	text  string
	style inlineStyle
}

// renderer turns the flat op list into block nodes. One is used per call.
type renderer struct {
	blocks   []*html.Node
	runs     []run
	list     *html.Node
	listKind ListKind
	embedded bool
}

// Render converts d into sanitized markup. Text is always escaped; links,
// colors and media references only reach attribute positions after
// validation, and anything that fails validation is dropped.
func Render(d Document) string {
	r := &renderer{}
	for i, op := range d.Ops {
		if op.IsEmbed() {
			r.embed(*op.Embed, lineAttributes(d.Ops[i+1:]))
			continue
		}
		parts := strings.Split(op.Text, "\n")
		for i, part := range parts {
			if part != "" {
				r.appendRun(part, op.Attributes.inline())
			}
			if i < len(parts)-1 {
				r.endLine(op.Attributes)
			}
		}
	}
	if len(r.runs) > 0 {
		r.endLine(Attributes{})
	}
	if len(r.blocks) == 0 {
		r.blocks = append(r.blocks, element(atom.P))
	}

	var buf bytes.Buffer
	for _, block := range r.blocks {
		// Writes to a bytes.Buffer do not fail.
		_ = html.Render(&buf, block)
	}
	return buf.String()
}

func (r *renderer) appendRun(text string, style inlineStyle) {
	if n := len(r.runs); n > 0 && r.runs[n-1].style == style {
		r.runs[n-1].text += text
		return
	}
	r.runs = append(r.runs, run{text: text, style: style})
}

// endLine closes the current line using the block attributes carried by
// the op holding its newline.
func (r *renderer) endLine(attrs Attributes) {
	if len(r.runs) == 0 && r.embedded {
		r.embedded = false
		return
	}
	r.embedded = false

	var node *html.Node
	switch {
	case attrs.List != "":
		node = element(atom.Li)
	case attrs.Header > 0:
		node = element(atom.Lookup([]byte("h" + strconv.Itoa(attrs.Header))))
	default:
		node = element(atom.P)
	}
	if attrs.Align != "" {
		node.Attr = append(node.Attr, html.Attribute{Key: "class", Val: "align-" + string(attrs.Align)})
	}
	for _, rn := range r.runs {
		node.AppendChild(inlineNode(rn))
	}
	r.runs = nil

	if attrs.List == "" {
		r.pushBlock(node)
		return
	}
	if r.list == nil || r.listKind != attrs.List {
		tag := atom.Ul
		if attrs.List == ListOrdered {
			tag = atom.Ol
		}
		r.list = element(tag)
		r.listKind = attrs.List
		r.blocks = append(r.blocks, r.list)
	}
	r.list.AppendChild(node)
}

func (r *renderer) pushBlock(node *html.Node) {
	r.list = nil
	r.listKind = ""
	r.blocks = append(r.blocks, node)
}

// lineAttributes returns the block attributes of the line that ops
// continue, taken from the first op carrying a newline.
func lineAttributes(ops []Op) Attributes {
	for _, op := range ops {
		if !op.IsEmbed() && strings.Contains(op.Text, "\n") {
			return op.Attributes
		}
	}
	return Attributes{}
}

// embed places media as its own block. Text already on the line is closed
// first, with the attributes its newline will carry.
func (r *renderer) embed(e Embed, line Attributes) {
	if len(r.runs) > 0 {
		r.endLine(line)
	}
	r.embedded = true

	var media *html.Node
	switch e.Kind {
	case EmbedImage:
		src, ok := safeImageSource(e.Value)
		if !ok {
			return
		}
		media = element(atom.Img,
			html.Attribute{Key: "src", Val: src},
			html.Attribute{Key: "alt", Val: ""},
		)
	case EmbedVideo:
		src, ok := safeVideoSource(e.Value)
		if !ok {
			return
		}
		media = element(atom.Iframe,
			html.Attribute{Key: "src", Val: src},
			html.Attribute{Key: "frameborder", Val: "0"},
			html.Attribute{Key: "allowfullscreen", Val: ""},
		)
	default:
		return
	}
	figure := element(atom.Figure)
	figure.AppendChild(media)
	r.pushBlock(figure)
}

func inlineNode(rn run) *html.Node {
	node := &html.Node{Type: html.TextNode, Data: rn.text}
	wrap := func(tag atom.Atom, attrs ...html.Attribute) {
		el := element(tag, attrs...)
		el.AppendChild(node)
		node = el
	}

	s := rn.style
	if s.Strike {
		wrap(atom.S)
	}
	if s.Underline {
		wrap(atom.U)
	}
	if s.Italic {
		wrap(atom.Em)
	}
	if s.Bold {
		wrap(atom.Strong)
	}
	if color, ok := safeColor(s.Color); ok {
		wrap(atom.Span, html.Attribute{Key: "style", Val: "color: " + color})
	}
	if href, ok := safeLink(s.Link); ok {
		wrap(atom.A,
			html.Attribute{Key: "href", Val: href},
			html.Attribute{Key: "rel", Val: "noopener noreferrer"},
			html.Attribute{Key: "target", Val: "_blank"},
		)
	}
	return node
}

func element(tag atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: tag,
		Data:     tag.String(),
		Attr:     attrs,
	}
}

func hasControl(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}

func safeLink(raw string) (string, bool) {
	link := strings.TrimSpace(raw)
	if link == "" || hasControl(link) {
		return "", false
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return link, u.Host != ""
	case "mailto", "tel", "":
		return link, true
	}
	return "", false
}

func safeImageSource(raw string) (string, bool) {
	src := strings.TrimSpace(raw)
	if dataImagePattern.MatchString(src) {
		return src, true
	}
	return webURL(src, "http", "https")
}

func safeVideoSource(raw string) (string, bool) {
	return webURL(strings.TrimSpace(raw), "https")
}

func webURL(raw string, schemes ...string) (string, bool) {
	if raw == "" || hasControl(raw) {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	for _, scheme := range schemes {
		if strings.EqualFold(u.Scheme, scheme) {
			return u.String(), true
		}
	}
	return "", false
}

// safeColor accepts #rgb, #rrggbb and rgb(r, g, b) and returns the color
// as #rrggbb.
func safeColor(raw string) (string, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return "", false
	}
	if strings.HasPrefix(value, "#") {
		if !hexColorPattern.MatchString(value) {
			return "", false
		}
		c, err := colorful.Hex(value)
		if err != nil {
			return "", false
		}
		return c.Hex(), true
	}
	m := rgbPattern.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	var channels [3]float64
	for i := range channels {
		n, err := strconv.Atoi(m[i+1])
		if err != nil || n > 255 {
			return "", false
		}
		channels[i] = float64(n) / 255
	}
	return colorful.Color{R: channels[0], G: channels[1], B: channels[2]}.Hex(), true
}
