// Package convert assembles flat article records from parsed PubMed
// documents.
package convert

import (
	"errors"
	"fmt"

	"github.com/miku/pubmedkit/author"
	"github.com/miku/pubmedkit/reference"
	"github.com/miku/pubmedkit/stats"
)

var (
	ErrMissingPMID    = errors.New("missing pmid")
	ErrMissingElement = errors.New("missing element")
	ErrMissingRoot    = errors.New("no PubmedArticleSet element")
)

// StructuralError means the document does not have the expected shape, e.g.
// a required element is missing or a numeric field is not a number.
type StructuralError struct {
	PMID    string // may be empty
	Element string
	Err     error
}

func (e *StructuralError) Error() string {
	if e.PMID == "" {
		return fmt.Sprintf("structure: %s: %v", e.Element, e.Err)
	}
	return fmt.Sprintf("structure: pmid %s: %s: %v", e.PMID, e.Element, e.Err)
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

func missing(pmid, element string) error {
	return &StructuralError{PMID: pmid, Element: element, Err: ErrMissingElement}
}

// Converter holds the conversion options and the counters it updates. A
// converter may be shared between goroutines.
type Converter struct {
	Authors    author.Resolver
	References *reference.Extractor
	Stats      *stats.Counters
	// IsolateArticles skips an article rejected by the author or reference
	// policy instead of failing the whole document. Structural errors
	// always fail the document.
	IsolateArticles bool
}

// New returns a converter with default options, updating the given
// counters. If counters is nil, private counters are used.
func New(counters *stats.Counters) *Converter {
	if counters == nil {
		counters = stats.New()
	}
	return &Converter{
		Authors:    author.Resolver{Policy: author.Strict},
		References: reference.New(),
		Stats:      counters,
	}
}
