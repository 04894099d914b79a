// Package author classifies author list entries as persons or collectives.
package author

import (
	"errors"
	"fmt"
	"slices"

	"github.com/segmentio/encoding/json"
)

// ErrInvalidAuthor is returned when serializing an author that was not
// created through New.
var ErrInvalidAuthor = errors.New("invalid author")

// Kind of author.
type Kind int

const (
	Person Kind = iota + 1
	Collective
)

func (k Kind) String() string {
	switch k {
	case Person:
		return "person"
	case Collective:
		return "collective"
	default:
		return "invalid"
	}
}

// Entry is a raw author list entry. Empty strings mean absent.
type Entry struct {
	LastName       string
	ForeName       string
	Initials       string
	CollectiveName string
	Affiliations   []string
}

func (e Entry) personEmpty() bool {
	return e.LastName == "" && e.ForeName == "" && e.Initials == ""
}

func (e Entry) collectiveEmpty() bool {
	return e.CollectiveName == ""
}

// AmbiguityError is returned for an entry that has either both name parts
// and a collective name, or neither.
type AmbiguityError struct {
	Index           int
	PersonEmpty     bool
	CollectiveEmpty bool
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("author %d: person_empty=%v collective_empty=%v",
		e.Index, e.PersonEmpty, e.CollectiveEmpty)
}

// Author is a person or a collective. Only New creates valid values.
type Author struct {
	kind           Kind
	LastName       string
	ForeName       string
	Initials       string
	Affiliations   []string
	CollectiveName string
}

// New classifies a single entry. Exactly one of name parts and collective
// name must be present.
func New(e Entry) (Author, error) {
	pe, ce := e.personEmpty(), e.collectiveEmpty()
	switch {
	case pe == ce:
		return Author{}, &AmbiguityError{PersonEmpty: pe, CollectiveEmpty: ce}
	case ce:
		return Author{
			kind:         Person,
			LastName:     e.LastName,
			ForeName:     e.ForeName,
			Initials:     e.Initials,
			Affiliations: slices.Clone(e.Affiliations),
		}, nil
	default:
		return Author{kind: Collective, CollectiveName: e.CollectiveName}, nil
	}
}

// Kind returns the kind of author, zero for invalid values.
func (a Author) Kind() Kind {
	return a.kind
}

// MarshalJSON renders persons and collectives with different keys, without
// a discriminator field.
func (a Author) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case Person:
		return json.Marshal(struct {
			LastName    string   `json:"last_name"`
			ForeName    string   `json:"fore_name,omitempty"`
			Initials    string   `json:"initials,omitempty"`
			Affiliation []string `json:"affiliation,omitempty"`
		}{a.LastName, a.ForeName, a.Initials, a.Affiliations})
	case Collective:
		return json.Marshal(struct {
			CollectiveName string `json:"collective_name"`
		}{a.CollectiveName})
	default:
		return nil, ErrInvalidAuthor
	}
}

// Policy decides what happens to ambiguous entries.
type Policy int

const (
	// Strict fails the whole list on the first ambiguous entry.
	Strict Policy = iota
	// Lenient drops ambiguous entries and keeps the rest.
	Lenient
)

func (p Policy) String() string {
	if p == Lenient {
		return "lenient"
	}
	return "strict"
}

// ParsePolicy parses "strict" or "lenient".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "strict", "":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	}
	return Strict, fmt.Errorf("unknown author policy: %q", s)
}

// Resolver turns raw entries into authors.
type Resolver struct {
	Policy Policy
}

// Resolve classifies all entries, in order. Skipped is the number of entries
// dropped under the lenient policy.
func (r Resolver) Resolve(entries []Entry) (authors []Author, skipped int, err error) {
	authors = make([]Author, 0, len(entries))
	for i, e := range entries {
		a, err := New(e)
		if err != nil {
			var ae *AmbiguityError
			if errors.As(err, &ae) {
				ae.Index = i
			}
			if r.Policy == Lenient {
				skipped++
				continue
			}
			return nil, skipped, err
		}
		authors = append(authors, a)
	}
	return authors, skipped, nil
}
