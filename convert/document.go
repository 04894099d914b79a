package convert

import (
	"bufio"
	"context"
	"encoding/xml"
	"errors"
	"io"

	"github.com/miku/pubmedkit/schema/pubmed"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
)

// ConvertDocument reads a complete PubmedArticleSet from r and writes one
// JSON line per article to w, in document order. It returns the number of
// records written. On error, w may contain a partial result. Elements other
// than PubmedArticle, e.g. DeleteCitation, are ignored.
func (c *Converter) ConvertDocument(ctx context.Context, r io.Reader, w io.Writer) (int, error) {
	var (
		dec     = xml.NewDecoder(r)
		bw      = bufio.NewWriter(w)
		enc     = json.NewEncoder(bw)
		n       int
		sawRoot bool
	)
	enc.SetEscapeHTML(false)
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, &StructuralError{Element: "PubmedArticleSet", Err: err}
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "PubmedArticleSet":
			sawRoot = true
			continue
		case "PubmedArticle":
		default:
			if !sawRoot {
				return n, &StructuralError{Element: se.Name.Local, Err: ErrMissingRoot}
			}
			if err := dec.Skip(); err != nil {
				return n, &StructuralError{Element: se.Name.Local, Err: err}
			}
			continue
		}
		var doc pubmed.Article
		if err := dec.DecodeElement(&doc, &se); err != nil {
			return n, &StructuralError{Element: "PubmedArticle", Err: err}
		}
		record, err := c.Convert(&doc)
		if err != nil {
			if !c.IsolateArticles || IsStructural(err) {
				return n, err
			}
			c.Stats.SkippedArticles.Add(1)
			log.WithFields(log.Fields{"pmid": doc.PMID(), "err": err}).Warn("skipping article")
			continue
		}
		if err := enc.Encode(record); err != nil {
			return n, err
		}
		n++
	}
	if !sawRoot {
		return n, &StructuralError{Element: "PubmedArticleSet", Err: ErrMissingRoot}
	}
	if err := bw.Flush(); err != nil {
		return n, err
	}
	c.Stats.Articles.Add(uint64(n))
	return n, nil
}

// IsStructural reports whether err is caused by a malformed document.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
