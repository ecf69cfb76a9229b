package document

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func query(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestRender_PlainAndBold(t *testing.T) {
	doc := ParseDocument(`{"ops":[{"insert":"Hello "},{"insert":"world","attributes":{"bold":true}}]}`)

	assert.Equal(t, "<p>Hello <strong>world</strong></p>", Render(doc))
}

func TestRender_FallbackIsSingleEmptyParagraph(t *testing.T) {
	assert.Equal(t, "<p></p>", Render(ParseDocument("not json")))
	assert.Equal(t, "<p></p>", Render(Empty()))
	assert.Equal(t, "<p></p>", Render(Document{}))
}

func TestRender_NewlinesSplitBlocks(t *testing.T) {
	doc := textDoc("first\n\nsecond\n", "third")

	assert.Equal(t, "<p>first</p><p></p><p>second</p><p>third</p>", Render(doc))
}

func TestRender_BlockAttributesComeFromNewlineOp(t *testing.T) {
	doc := Document{Ops: []Op{
		{Text: "Title"},
		{Text: "\n", Attributes: Attributes{Header: 1, Align: AlignCenter}},
		{Text: "one"},
		{Text: "\n", Attributes: Attributes{List: ListBullet}},
		{Text: "two"},
		{Text: "\n", Attributes: Attributes{List: ListBullet}},
		{Text: "first"},
		{Text: "\n", Attributes: Attributes{List: ListOrdered}},
		{Text: "after\n"},
	}}

	assert.Equal(t,
		`<h1 class="align-center">Title</h1>`+
			`<ul><li>one</li><li>two</li></ul>`+
			`<ol><li>first</li></ol>`+
			`<p>after</p>`,
		Render(doc))
}

func TestRender_MergesRunsWithSameStyle(t *testing.T) {
	doc := Document{Ops: []Op{
		{Text: "a", Attributes: Attributes{Italic: true}},
		{Text: "b", Attributes: Attributes{Italic: true, Extra: nil}},
		{Text: "c"},
	}}

	assert.Equal(t, "<p><em>ab</em>c</p>", Render(doc))
}

func TestRender_NestedInlineWrapping(t *testing.T) {
	doc := Document{Ops: []Op{{
		Text: "x",
		Attributes: Attributes{
			Bold: true, Italic: true, Underline: true, Strike: true,
			Color: "#F00", Link: "https://example.com/a?b=1&c=2",
		},
	}}}

	assert.Equal(t,
		`<p><a href="https://example.com/a?b=1&amp;c=2" rel="noopener noreferrer" target="_blank">`+
			`<span style="color: #ff0000"><strong><em><u><s>x</s></u></em></strong></span></a></p>`,
		Render(doc))
}

func TestRender_EscapesText(t *testing.T) {
	doc := textDoc(`<script>alert("x")</script> & more`)

	out := Render(doc)
	assert.NotContains(t, out, "<script>")
	assert.Equal(t, "<p>&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt; &amp; more</p>", out)
}

func TestRender_UnsafeLinksAreDropped(t *testing.T) {
	links := []string{
		"javascript:alert(1)",
		"JavaScript:alert(1)",
		" javascript:alert(1)",
		"java\tscript:alert(1)",
		"data:text/html;base64,PHNjcmlwdD4=",
		"vbscript:msgbox",
		"http://",
	}
	for _, link := range links {
		t.Run(link, func(t *testing.T) {
			doc := Document{Ops: []Op{{Text: "click", Attributes: Attributes{Link: link}}}}
			assert.Equal(t, "<p>click</p>", Render(doc))
		})
	}
}

func TestRender_SafeLinksAreKept(t *testing.T) {
	links := []string{"https://example.com", "http://example.com/x", "mailto:a@example.com", "tel:+123", "/articles/1", "#top"}
	for _, link := range links {
		t.Run(link, func(t *testing.T) {
			doc := Document{Ops: []Op{{Text: "click", Attributes: Attributes{Link: link}}}}
			href, ok := query(t, Render(doc)).Find("a").Attr("href")
			require.True(t, ok)
			assert.Equal(t, link, href)
		})
	}
}

func TestRender_Colors(t *testing.T) {
	cases := map[string]string{
		"#abc":              "#aabbcc",
		"#A1B2C3":           "#a1b2c3",
		"rgb(255, 0, 10)":   "#ff000a",
		"rgb(0,0,0)":        "#000000",
		"red":               "",
		"#12345":            "",
		"#12345z":           "",
		"#abg":              "",
		"rgb(300, 0, 0)":    "",
		"#fff; background:": "",
		"expression(alert)": "",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			doc := Document{Ops: []Op{{Text: "c", Attributes: Attributes{Color: in}}}}
			out := Render(doc)
			if want == "" {
				assert.Equal(t, "<p>c</p>", out)
				return
			}
			assert.Equal(t, `<p><span style="color: `+want+`">c</span></p>`, out)
		})
	}
}

func TestRender_Embeds(t *testing.T) {
	doc := Document{Ops: []Op{
		{Text: "before"},
		{Embed: &Embed{Kind: EmbedImage, Value: "https://cdn.example.com/a.png"}},
		{Text: "\n"},
		{Embed: &Embed{Kind: EmbedVideo, Value: "https://video.example.com/embed/1"}},
		{Text: "\nafter"},
	}}

	assert.Equal(t,
		`<p>before</p>`+
			`<figure><img src="https://cdn.example.com/a.png" alt=""/></figure>`+
			`<figure><iframe src="https://video.example.com/embed/1" frameborder="0" allowfullscreen=""></iframe></figure>`+
			`<p>after</p>`,
		Render(doc))
}

func TestRender_EmbedKeepsBlockAttributesOfItsLine(t *testing.T) {
	doc := Document{Ops: []Op{
		{Text: "item"},
		{Embed: &Embed{Kind: EmbedImage, Value: "https://cdn.example.com/a.png"}},
		{Text: "\n", Attributes: Attributes{List: ListBullet}},
	}}

	out := query(t, Render(doc))
	assert.Equal(t, "item", out.Find("ul > li").Text())
	assert.Equal(t, 0, out.Find("p").Length())
	assert.Equal(t, 1, out.Find("figure > img").Length())
}

func TestRender_UnsafeEmbedsAreOmitted(t *testing.T) {
	doc := Document{Ops: []Op{
		{Embed: &Embed{Kind: EmbedImage, Value: `javascript:alert(1)`}},
		{Embed: &Embed{Kind: EmbedImage, Value: `x" onerror="alert(1)`}},
		{Embed: &Embed{Kind: EmbedImage, Value: "data:text/html;base64,AAAA"}},
		{Embed: &Embed{Kind: EmbedVideo, Value: "http://video.example.com/insecure"}},
		{Embed: &Embed{Kind: "formula", Value: "e=mc^2"}},
		{Text: "\ntext"},
	}}

	out := Render(doc)
	assert.Equal(t, "<p>text</p>", out)
	assert.NotContains(t, out, "onerror")
}

func TestRender_DataImageIsAllowed(t *testing.T) {
	src := "data:image/png;base64,iVBORw0KGgo="
	doc := Document{Ops: []Op{{Embed: &Embed{Kind: EmbedImage, Value: src}}}}

	got, ok := query(t, Render(doc)).Find("figure img").Attr("src")
	require.True(t, ok)
	assert.Equal(t, src, got)
}

func TestRender_UnknownAttributesIgnored(t *testing.T) {
	doc := ParseDocument(`{"ops":[{"insert":"x","attributes":{"font":"serif","onclick":"alert(1)","bold":"yes"}},{"insert":"\n","attributes":{"list":"checked"}}]}`)

	assert.Equal(t, "<p>x</p>", Render(doc))
}

func TestRender_PreservesOrderAndIsPure(t *testing.T) {
	doc := ParseDocument(`{"ops":[{"insert":"one\n"},{"insert":{"image":"https://e.com/1.png"}},{"insert":"two","attributes":{"italic":true}},{"insert":"\nthree\n","attributes":{"header":3}}]}`)

	first := Render(doc)
	assert.Equal(t, first, Render(doc))

	sel := query(t, first).Find("body").Children()
	var tags []string
	sel.Each(func(_ int, s *goquery.Selection) {
		tags = append(tags, goquery.NodeName(s))
	})
	assert.Equal(t, []string{"p", "figure", "h3", "h3"}, tags)
	assert.Equal(t, "two", sel.Eq(2).Text())
	assert.Equal(t, "three", sel.Eq(3).Text())
}
