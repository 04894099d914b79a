package author

import (
	"errors"
	"reflect"
	"testing"

	"github.com/segmentio/encoding/json"
)

func TestNew(t *testing.T) {
	var cases = []struct {
		help  string
		entry Entry
		kind  Kind
		err   bool
	}{
		{"both empty", Entry{}, 0, true},
		{"full person", Entry{LastName: "Smith", ForeName: "Jane", Initials: "J"}, Person, false},
		{"last name only", Entry{LastName: "Smith"}, Person, false},
		{"initials only", Entry{Initials: "J"}, Person, false},
		{"fore name only", Entry{ForeName: "Jane"}, Person, false},
		{"collective", Entry{CollectiveName: "WHO Group"}, Collective, false},
		{"collective with affiliation", Entry{CollectiveName: "WHO Group", Affiliations: []string{"Geneva"}}, Collective, false},
		{"both present", Entry{LastName: "Smith", CollectiveName: "WHO Group"}, 0, true},
		{"initials and collective", Entry{Initials: "J", CollectiveName: "WHO Group"}, 0, true},
		{"affiliation only", Entry{Affiliations: []string{"Somewhere"}}, 0, true},
	}
	for _, c := range cases {
		t.Run(c.help, func(t *testing.T) {
			a, err := New(c.entry)
			if c.err {
				var ae *AmbiguityError
				if !errors.As(err, &ae) {
					t.Fatalf("got %v, want AmbiguityError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.Kind() != c.kind {
				t.Fatalf("got %v, want %v", a.Kind(), c.kind)
			}
		})
	}
}

func TestNewCopiesAffiliations(t *testing.T) {
	e := Entry{LastName: "Smith", Affiliations: []string{"Geneva"}}
	a, err := New(e)
	if err != nil {
		t.Fatal(err)
	}
	e.Affiliations[0] = "changed"
	if a.Affiliations[0] != "Geneva" {
		t.Errorf("got %q, want %q", a.Affiliations[0], "Geneva")
	}
}

func TestAmbiguityErrorMessage(t *testing.T) {
	_, _, err := Resolver{}.Resolve([]Entry{
		{LastName: "Smith"},
		{LastName: "Doe", CollectiveName: "Group"},
	})
	var ae *AmbiguityError
	if !errors.As(err, &ae) {
		t.Fatalf("got %v, want AmbiguityError", err)
	}
	if ae.Index != 1 || ae.PersonEmpty || ae.CollectiveEmpty {
		t.Fatalf("got %+v", ae)
	}
	want := "author 1: person_empty=false collective_empty=false"
	if ae.Error() != want {
		t.Fatalf("got %q, want %q", ae.Error(), want)
	}
}

func TestResolvePolicies(t *testing.T) {
	entries := []Entry{
		{LastName: "Smith", ForeName: "Jane", Initials: "J", Affiliations: []string{"A", "B", "A"}},
		{},
		{CollectiveName: "WHO Group"},
	}
	if _, _, err := (Resolver{Policy: Strict}).Resolve(entries); err == nil {
		t.Fatal("strict: expected error")
	}
	authors, skipped, err := Resolver{Policy: Lenient}.Resolve(entries)
	if err != nil {
		t.Fatalf("lenient: %v", err)
	}
	if skipped != 1 {
		t.Fatalf("got %d skipped, want 1", skipped)
	}
	if len(authors) != 2 {
		t.Fatalf("got %d authors, want 2", len(authors))
	}
	if authors[0].Kind() != Person || authors[1].Kind() != Collective {
		t.Fatalf("got kinds %v, %v", authors[0].Kind(), authors[1].Kind())
	}
	if !reflect.DeepEqual(authors[0].Affiliations, []string{"A", "B", "A"}) {
		t.Fatalf("affiliations order or duplicates lost: %v", authors[0].Affiliations)
	}
}

func TestResolveEmpty(t *testing.T) {
	authors, skipped, err := Resolver{}.Resolve(nil)
	if err != nil || skipped != 0 || len(authors) != 0 {
		t.Fatalf("got %v, %d, %v", authors, skipped, err)
	}
}

func TestMarshalJSON(t *testing.T) {
	var cases = []struct {
		help   string
		entry  Entry
		result string
	}{
		{
			"person",
			Entry{LastName: "Smith", ForeName: "Jane", Initials: "J", Affiliations: []string{"Dept. of Biology"}},
			`{"last_name":"Smith","fore_name":"Jane","initials":"J","affiliation":["Dept. of Biology"]}`,
		},
		{
			"person without optional parts",
			Entry{Initials: "J"},
			`{"last_name":"","initials":"J"}`,
		},
		{
			"collective",
			Entry{CollectiveName: "WHO Group", Affiliations: []string{"ignored"}},
			`{"collective_name":"WHO Group"}`,
		},
	}
	for _, c := range cases {
		t.Run(c.help, func(t *testing.T) {
			a, err := New(c.entry)
			if err != nil {
				t.Fatal(err)
			}
			b, err := json.Marshal(a)
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != c.result {
				t.Fatalf("got %s, want %s", b, c.result)
			}
		})
	}
}

func TestMarshalInvalid(t *testing.T) {
	if _, err := (Author{LastName: "x"}).MarshalJSON(); !errors.Is(err, ErrInvalidAuthor) {
		t.Fatalf("got %v, want %v", err, ErrInvalidAuthor)
	}
}

func TestParsePolicy(t *testing.T) {
	for s, want := range map[string]Policy{"": Strict, "strict": Strict, "lenient": Lenient} {
		got, err := ParsePolicy(s)
		if err != nil || got != want {
			t.Errorf("%q: got %v, %v", s, got, err)
		}
	}
	if _, err := ParsePolicy("maybe"); err == nil {
		t.Error("expected error")
	}
}
