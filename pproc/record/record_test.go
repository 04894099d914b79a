package record

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/google/go-cmp/cmp"
)

func articles(n int) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0"?>` + "\n<PubmedArticleSet>\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "<PubmedArticle><PMID>%d</PMID></PubmedArticle>\n", i)
	}
	sb.WriteString("</PubmedArticleSet>\n")
	return sb.String()
}

func scanAll(r *strings.Reader, split bufio.SplitFunc) ([]string, error) {
	scanner := bufio.NewScanner(iotest.HalfReader(r))
	scanner.Buffer(make([]byte, 0, 16), 1<<16)
	scanner.Split(split)
	var tokens []string
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	return tokens, scanner.Err()
}

func TestElementSplitter(t *testing.T) {
	var cases = []struct {
		name  string
		input string
		n     int
		want  []string
	}{
		{
			name:  "single",
			input: articles(1),
			n:     1,
			want:  []string{"<PubmedArticle><PMID>0</PMID></PubmedArticle>"},
		},
		{
			name:  "batches of two",
			input: articles(3),
			n:     2,
			want: []string{
				"<PubmedArticle><PMID>0</PMID></PubmedArticle>\n<PubmedArticle><PMID>1</PMID></PubmedArticle>",
				"<PubmedArticle><PMID>2</PMID></PubmedArticle>",
			},
		},
		{
			name:  "batch larger than input",
			input: articles(2),
			n:     100,
			want: []string{
				"<PubmedArticle><PMID>0</PMID></PubmedArticle>\n<PubmedArticle><PMID>1</PMID></PubmedArticle>",
			},
		},
		{
			name:  "no elements",
			input: articles(0),
			n:     1,
			want:  nil,
		},
		{
			name:  "attributes and similar names",
			input: `<PubmedArticleSet><PubmedArticleX>no</PubmedArticleX><PubmedArticle a="1">yes</PubmedArticle></PubmedArticleSet>`,
			n:     1,
			want:  []string{`<PubmedArticle a="1">yes</PubmedArticle>`},
		},
		{
			name:  "other elements in between",
			input: `<PubmedArticleSet><PubmedArticle>1</PubmedArticle><DeleteCitation/><PubmedArticle>2</PubmedArticle></PubmedArticleSet>`,
			n:     2,
			want:  []string{`<PubmedArticle>1</PubmedArticle><DeleteCitation/><PubmedArticle>2</PubmedArticle>`},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := scanAll(strings.NewReader(c.input), ElementSplitter("PubmedArticle", c.n))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestElementSplitterIncomplete(t *testing.T) {
	for _, input := range []string{
		"<PubmedArticleSet><PubmedArticle><PMID>1</PMID>",
		"<PubmedArticleSet><PubmedArticle>1</PubmedArticle><PubmedArticle>2",
	} {
		_, err := scanAll(strings.NewReader(input), ElementSplitter("PubmedArticle", 5))
		if !errors.Is(err, ErrIncompleteElement) {
			t.Errorf("%q: got %v, want %v", input, err, ErrIncompleteElement)
		}
	}
}

func TestElementSplitterTooLong(t *testing.T) {
	input := "<PubmedArticle>" + strings.Repeat("x", 1<<17) + "</PubmedArticle>"
	_, err := scanAll(strings.NewReader(input), ElementSplitter("PubmedArticle", 1))
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Errorf("got %v, want %v", err, bufio.ErrTooLong)
	}
}

func TestElementSplitterInvalid(t *testing.T) {
	for _, split := range []bufio.SplitFunc{
		ElementSplitter("", 1),
		ElementSplitter("PubmedArticle", 0),
	} {
		_, err := scanAll(strings.NewReader(articles(1)), split)
		if !errors.Is(err, ErrInvalidSplitter) {
			t.Errorf("got %v, want %v", err, ErrInvalidSplitter)
		}
	}
}

func TestWrapElements(t *testing.T) {
	got := string(WrapElements("PubmedArticleSet", []byte("<PubmedArticle/>")))
	want := "<PubmedArticleSet><PubmedArticle/></PubmedArticleSet>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestProcessorKeepsOrder(t *testing.T) {
	var input strings.Builder
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&input, "%d\n", i)
	}
	f := func(b []byte) ([]byte, error) {
		time.Sleep(time.Duration(rand.Intn(100)) * time.Microsecond)
		return append(b, '\n'), nil
	}
	var buf bytes.Buffer
	p := NewProcessor(f, WithWorkers(8))
	if err := p.Process(context.Background(), strings.NewReader(input.String()), &buf); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(input.String(), buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessorSkipsNil(t *testing.T) {
	f := func(b []byte) ([]byte, error) {
		if bytes.Equal(b, []byte("drop")) {
			return nil, nil
		}
		return append(b, '\n'), nil
	}
	var buf bytes.Buffer
	p := NewProcessor(f, WithWorkers(3))
	if err := p.Process(context.Background(), strings.NewReader("a\ndrop\nb\ndrop\nc\n"), &buf); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "a\nb\nc\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestProcessorError(t *testing.T) {
	errBoom := errors.New("boom")
	f := func(b []byte) ([]byte, error) {
		if bytes.Equal(b, []byte("17")) {
			return nil, errBoom
		}
		return b, nil
	}
	var input strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&input, "%d\n", i)
	}
	p := NewProcessor(f, WithWorkers(4))
	err := p.Process(context.Background(), strings.NewReader(input.String()), &bytes.Buffer{})
	if !errors.Is(err, errBoom) {
		t.Errorf("got %v, want %v", err, errBoom)
	}
}

func TestProcessorElements(t *testing.T) {
	f := func(b []byte) ([]byte, error) {
		n := bytes.Count(b, []byte("</PubmedArticle>"))
		return []byte(fmt.Sprintf("%d\n", n)), nil
	}
	var buf bytes.Buffer
	p := NewProcessor(f,
		WithWorkers(2),
		WithMaxBufferSize(64),
		WithSplitFunc(ElementSplitter("PubmedArticle", 4)))
	if err := p.Process(context.Background(), strings.NewReader(articles(10)), &buf); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "4\n4\n2\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
