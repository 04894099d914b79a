// Package reference extracts cited identifiers from PubMed reference lists.
package reference

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/miku/pubmedkit/schema/pubmed"
)

const (
	// DefaultVocabulary is the only IdType we keep by default.
	DefaultVocabulary = "pubmed"
	// DefaultMaxID is the largest PMID known to be valid in the 2024 baseline.
	DefaultMaxID uint64 = 3024180
)

// IDFormatError is returned when an identifier in the selected vocabulary is
// not an unsigned integer.
type IDFormatError struct {
	SelfID uint64
	Value  string
	Err    error
}

func (e *IDFormatError) Error() string {
	return fmt.Sprintf("article %d: malformed reference id %q: %v", e.SelfID, e.Value, e.Err)
}

func (e *IDFormatError) Unwrap() error {
	return e.Err
}

// Policy for malformed identifiers.
type Policy int

const (
	// Skip drops a malformed identifier and continues.
	Skip Policy = iota
	// Strict fails the extraction.
	Strict
)

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "skip"
}

// ParsePolicy parses "skip" or "strict".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "skip", "":
		return Skip, nil
	case "strict":
		return Strict, nil
	}
	return Skip, fmt.Errorf("unknown reference policy: %q", s)
}

// Result of an extraction. Before counts all identifiers seen in references
// that have an id list, After the ones that passed the filters.
type Result struct {
	IDs     []string
	Before  int
	After   int
	Skipped int
}

// Extractor filters reference identifiers by vocabulary and numeric range.
type Extractor struct {
	Vocabulary string
	MaxID      uint64
	Policy     Policy
	// Nested also walks reference lists contained in reference lists. Off by
	// default, only the first level is used.
	Nested bool
}

// New returns an extractor with default vocabulary and threshold.
func New() *Extractor {
	return &Extractor{
		Vocabulary: DefaultVocabulary,
		MaxID:      DefaultMaxID,
		Policy:     Skip,
	}
}

// Extract returns the identifiers of the given list, in document order. A nil
// list yields an empty result.
func (x *Extractor) Extract(selfID uint64, list *pubmed.ReferenceList) (Result, error) {
	var result Result
	if list == nil {
		return result, nil
	}
	if err := x.walk(selfID, list, &result); err != nil {
		return Result{}, err
	}
	return result, nil
}

func (x *Extractor) walk(selfID uint64, list *pubmed.ReferenceList, result *Result) error {
	for _, ref := range list.Reference {
		if ref.ArticleIDList == nil {
			continue
		}
		ids := ref.ArticleIDList.ArticleID
		result.Before += len(ids)
		for _, id := range ids {
			value := strings.TrimSpace(id.Value)
			if id.IDType != x.Vocabulary || value == "" {
				continue
			}
			v, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				if x.Policy == Strict {
					return &IDFormatError{SelfID: selfID, Value: value, Err: err}
				}
				result.Skipped++
				continue
			}
			if v > x.MaxID {
				continue
			}
			result.After++
			result.IDs = append(result.IDs, value)
		}
	}
	if !x.Nested {
		return nil
	}
	for i := range list.ReferenceList {
		if err := x.walk(selfID, &list.ReferenceList[i], result); err != nil {
			return err
		}
	}
	return nil
}
