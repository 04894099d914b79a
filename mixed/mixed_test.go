package mixed

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/beevik/etree"
)

func TestFlatten(t *testing.T) {
	var cases = []struct {
		help   string
		node   Node
		result string
	}{
		{"nil node", nil, ""},
		{"empty node", Node{}, ""},
		{"single text", Node{NewText("hello")}, "hello"},
		{"whitespace normalization", Node{
			NewText("a "),
			Wrap(Italic, NewText("b")),
			NewText(" c"),
		}, "a b c"},
		{"math vanishes", Node{
			NewText("x"),
			{Kind: Math},
			NewText("y"),
		}, "x y"},
		{"unknown vanishes", Node{
			NewText("x"),
			{Kind: Unknown},
		}, "x"},
		{"end to end title", Node{
			NewText("Role of "),
			Wrap(Italic, NewText("p53")),
			NewText(" in cancer"),
		}, "Role of p53 in cancer"},
		{"bold inside italic", Node{
			Wrap(Italic, NewText("a"), Wrap(Bold, NewText("b")), NewText("c")),
		}, "abc"},
		{"deep nesting", Node{
			Wrap(Bold, Wrap(Superscript, Wrap(Subscript, Wrap(Italic, Wrap(Bold, NewText(" deep ")))))),
		}, "deep"},
		{"math inside sup", Node{
			NewText("x"),
			Wrap(Superscript, NewText("2"), Segment{Kind: Math}),
		}, "x 2"},
		{"empty wrappers dropped", Node{
			NewText("a"),
			Wrap(Italic),
			Wrap(Bold, NewText("   ")),
			NewText("b"),
		}, "a b"},
		{"inner whitespace kept", Node{
			Wrap(Italic, NewText("in "), NewText(" vivo")),
		}, "in  vivo"},
		{"wrapper without payload ignores text field", Node{
			{Kind: Math, Text: "ignored"},
		}, ""},
	}
	for _, c := range cases {
		t.Run(c.help, func(t *testing.T) {
			if got := Flatten(c.node); got != c.result {
				t.Fatalf("got %q, want %q", got, c.result)
			}
		})
	}
}

func TestUnmarshalXML(t *testing.T) {
	var cases = []struct {
		help   string
		input  string
		result string
	}{
		{"plain", `<doc><title>A title</title></doc>`, "A title"},
		{"empty", `<doc><title></title></doc>`, ""},
		{"self closing", `<doc><title/></doc>`, ""},
		{"italic", `<doc><title>Role of <i>p53</i> in cancer</title></doc>`, "Role of p53 in cancer"},
		{"nested sub", `<doc>
            <title>
            text <sub>1-<i>y</i></sub>
            </title>
        </doc>`, "text 1-y"},
		{"subscript splits word", `<doc><title>Effect of CO<sub>2</sub> on growth</title></doc>`, "Effect of CO 2 on growth"},
		{"bold in italic", `<doc><title><i>a<b>b</b>c</i></title></doc>`, "abc"},
		{"mathml", `<doc><title>x<mml:math><mml:mi>y</mml:mi></mml:math>z</title></doc>`, "x z"},
		{"unknown element", `<doc><title>x<foo>bar</foo>z</title></doc>`, "x z"},
		{"underline", `<doc><title><u>under</u>line</title></doc>`, "under line"},
		{"cdata merges", `<doc><title>a<![CDATA[b]]>c</title></doc>`, "abc"},
		{"entities", `<doc><title>A &amp; B</title></doc>`, "A & B"},
	}
	for _, c := range cases {
		t.Run(c.help, func(t *testing.T) {
			var doc struct {
				Title Node `xml:"title"`
			}
			if err := xml.Unmarshal([]byte(c.input), &doc); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := Flatten(doc.Title); got != c.result {
				t.Fatalf("got %q, want %q", got, c.result)
			}
		})
	}
}

func TestUnmarshalXMLStructure(t *testing.T) {
	var doc struct {
		Title Node `xml:"title"`
	}
	input := `<doc><title>a<b>b<i>c</i></b><sup>2</sup><sub>x</sub><math/></title></doc>`
	if err := xml.Unmarshal([]byte(input), &doc); err != nil {
		t.Fatal(err)
	}
	want := []Kind{Text, Bold, Superscript, Subscript, Math}
	if len(doc.Title) != len(want) {
		t.Fatalf("got %d segments, want %d", len(doc.Title), len(want))
	}
	for i, k := range want {
		if doc.Title[i].Kind != k {
			t.Errorf("segment %d: got %v, want %v", i, doc.Title[i].Kind, k)
		}
	}
	if inner := doc.Title[1].Children; len(inner) != 2 || inner[1].Kind != Italic {
		t.Errorf("bold children: got %v", inner)
	}
}

func TestUnmarshalXMLTruncated(t *testing.T) {
	var doc struct {
		Title Node `xml:"title"`
	}
	if err := xml.Unmarshal([]byte(`<doc><title>a<i>b`), &doc); err == nil {
		t.Fatal("expected error on truncated document")
	}
}

func TestFromElement(t *testing.T) {
	tree := etree.NewDocument()
	input := `<PubmedArticle><ArticleTitle>Role of <i>p53</i> in <b>human <sup>x</sup></b> cancer<mml:math><mml:mi>q</mml:mi></mml:math></ArticleTitle></PubmedArticle>`
	if err := tree.ReadFromString(input); err != nil {
		t.Fatal(err)
	}
	el := tree.FindElement(".//ArticleTitle")
	if el == nil {
		t.Fatal("title not found")
	}
	want := "Role of p53 in human x cancer"
	if got := Flatten(FromElement(el)); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := FromElement(nil); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestFromElementMatchesDecoder(t *testing.T) {
	input := `<t>  Lead <i>in <b>vivo</b></i> study of H<sub>2</sub>O <math>m</math> end  </t>`
	var node Node
	if err := xml.NewDecoder(strings.NewReader(input)).Decode(&node); err != nil {
		t.Fatal(err)
	}
	tree := etree.NewDocument()
	if err := tree.ReadFromString(input); err != nil {
		t.Fatal(err)
	}
	if a, b := Flatten(node), Flatten(FromElement(tree.Root())); a != b {
		t.Fatalf("decoder %q, etree %q", a, b)
	}
}
