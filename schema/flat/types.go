// Package flat is the normalized, one line per article output record.
// Optional sections are omitted instead of being written as null.
package flat

import "github.com/miku/pubmedkit/author"

// Article is the output record.
type Article struct {
	ID               uint64            `json:"id"`
	Title            string            `json:"title"`
	PubModel         string            `json:"pub_model"`
	DateCreated      Date              `json:"date_created"`
	DateCompleted    *Date             `json:"date_completed,omitempty"`
	Keywords         []string          `json:"keywords,omitempty"`
	Journal          Journal           `json:"journal"`
	Authors          []author.Author   `json:"author,omitempty"`
	PublicationTypes []PublicationType `json:"publication_types,omitempty"`
	Grants           []Grant           `json:"grant,omitempty"`
	References       []string          `json:"references,omitempty"`
	ArticleIDs       []ArticleID       `json:"article_ids,omitempty"`
}

// Date, DateCreated is taken from DateRevised.
type Date struct {
	Year  uint16 `json:"year"`
	Month uint8  `json:"month"`
	Day   uint8  `json:"day"`
}

// Journal merges MedlineJournalInfo (id, country, issn) with the journal
// title and issue of the article.
type Journal struct {
	ID           string        `json:"id"`
	Country      string        `json:"country"`
	ISSN         string        `json:"issn"`
	Title        string        `json:"title"`
	JournalIssue *JournalIssue `json:"journal_issue,omitempty"`
}

type JournalIssue struct {
	Volume string `json:"volume,omitempty"`
	Issue  string `json:"issue,omitempty"`
}

type PublicationType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Grant struct {
	ID      string `json:"id,omitempty"`
	Acronym string `json:"acronym,omitempty"`
	Agency  string `json:"agency"`
	Country string `json:"country,omitempty"`
}

type ArticleID struct {
	Type string `json:"ty"`
	ID   string `json:"id,omitempty"`
}
