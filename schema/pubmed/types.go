// Package pubmed contains the subset of the PubMed XML schema we consume,
// cf. https://dtd.nlm.nih.gov/ncbi/pubmed/out/pubmed_250101.dtd.
//
// Struct layout started from a zek generated version and was reduced to the
// elements we need. Elements that must be present are pointers, so that a
// missing element can be told apart from an empty one.
package pubmed

import (
	"encoding/xml"

	"github.com/miku/pubmedkit/mixed"
)

// Article is a single PubmedArticle.
type Article struct {
	XMLName         xml.Name        `xml:"PubmedArticle"`
	MedlineCitation MedlineCitation `xml:"MedlineCitation"`
	PubmedData      *PubmedData     `xml:"PubmedData"`
}

// PMID returns the raw PMID value.
func (a *Article) PMID() string {
	if a.MedlineCitation.PMID == nil {
		return ""
	}
	return a.MedlineCitation.PMID.Value
}

type MedlineCitation struct {
	Status             string              `xml:"Status,attr"`
	Owner              string              `xml:"Owner,attr"`
	PMID               *PMID               `xml:"PMID"`
	DateCompleted      *Date               `xml:"DateCompleted"`
	DateRevised        *Date               `xml:"DateRevised"`
	Article            *ArticleMetadata    `xml:"Article"`
	MedlineJournalInfo *MedlineJournalInfo `xml:"MedlineJournalInfo"`
	KeywordList        []KeywordList       `xml:"KeywordList"`
}

type PMID struct {
	Value   string `xml:",chardata"`
	Version string `xml:"Version,attr"`
}

// Date is used for DateCompleted and DateRevised, which are always numeric.
type Date struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

// ArticleMetadata is the Article element within a MedlineCitation.
type ArticleMetadata struct {
	PubModel            string               `xml:"PubModel,attr"`
	Journal             *Journal             `xml:"Journal"`
	ArticleTitle        *mixed.Node          `xml:"ArticleTitle"`
	AuthorList          *AuthorList          `xml:"AuthorList"`
	Language            []string             `xml:"Language"`
	GrantList           *GrantList           `xml:"GrantList"`
	PublicationTypeList *PublicationTypeList `xml:"PublicationTypeList"`
}

type Journal struct {
	ISSN            *ISSN         `xml:"ISSN"`
	JournalIssue    *JournalIssue `xml:"JournalIssue"`
	Title           *string       `xml:"Title"`
	ISOAbbreviation string        `xml:"ISOAbbreviation"`
}

type ISSN struct {
	Value    string `xml:",chardata"`
	IssnType string `xml:"IssnType,attr"`
}

type JournalIssue struct {
	CitedMedium string  `xml:"CitedMedium,attr"`
	Volume      *string `xml:"Volume"`
	Issue       *string `xml:"Issue"`
}

type MedlineJournalInfo struct {
	Country     *string `xml:"Country"`
	MedlineTA   string  `xml:"MedlineTA"`
	NlmUniqueID *string `xml:"NlmUniqueID"`
	ISSNLinking string  `xml:"ISSNLinking"`
}

// KeywordList keywords may contain inline markup.
type KeywordList struct {
	Owner   string       `xml:"Owner,attr"`
	Keyword []mixed.Node `xml:"Keyword"`
}

type AuthorList struct {
	CompleteYN string   `xml:"CompleteYN,attr"`
	Author     []Author `xml:"Author"`
}

// Author is either a person (name parts) or a collective (CollectiveName).
type Author struct {
	ValidYN         string            `xml:"ValidYN,attr"`
	LastName        string            `xml:"LastName"`
	ForeName        string            `xml:"ForeName"`
	Initials        string            `xml:"Initials"`
	Suffix          string            `xml:"Suffix"`
	CollectiveName  mixed.Node        `xml:"CollectiveName"`
	AffiliationInfo []AffiliationInfo `xml:"AffiliationInfo"`
}

type AffiliationInfo struct {
	Affiliation mixed.Node `xml:"Affiliation"`
}

type GrantList struct {
	CompleteYN string  `xml:"CompleteYN,attr"`
	Grant      []Grant `xml:"Grant"`
}

type Grant struct {
	GrantID *string `xml:"GrantID"`
	Acronym *string `xml:"Acronym"`
	Agency  string  `xml:"Agency"`
	Country *string `xml:"Country"`
}

type PublicationTypeList struct {
	PublicationType []PublicationType `xml:"PublicationType"`
}

type PublicationType struct {
	UI   string `xml:"UI,attr"`
	Name string `xml:",chardata"`
}

type PubmedData struct {
	PublicationStatus string          `xml:"PublicationStatus"`
	ArticleIDList     *ArticleIDList  `xml:"ArticleIdList"`
	ReferenceList     []ReferenceList `xml:"ReferenceList"`
}

type ArticleIDList struct {
	ArticleID []ArticleID `xml:"ArticleId"`
}

// ArticleID is an identifier in a vocabulary, e.g. IdType="pubmed". An empty
// value counts as absent.
type ArticleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

// ReferenceList may contain further reference lists; the DTD allows
// arbitrary nesting.
type ReferenceList struct {
	Title         string          `xml:"Title"`
	Reference     []Reference     `xml:"Reference"`
	ReferenceList []ReferenceList `xml:"ReferenceList"`
}

type Reference struct {
	Citation      mixed.Node     `xml:"Citation"`
	ArticleIDList *ArticleIDList `xml:"ArticleIdList"`
}
