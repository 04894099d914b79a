package convert

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/miku/pubmedkit/author"
	"github.com/miku/pubmedkit/mixed"
	"github.com/miku/pubmedkit/schema/flat"
	"github.com/miku/pubmedkit/schema/pubmed"
)

// Convert turns a single PubmedArticle into a flat record. Reference and
// skip counts are added to the converter counters only for the steps that
// succeed; a strict reference policy error adds no reference counts.
func (c *Converter) Convert(doc *pubmed.Article) (*flat.Article, error) {
	var (
		mc   = &doc.MedlineCitation
		pmid = strings.TrimSpace(doc.PMID())
	)
	if pmid == "" {
		return nil, &StructuralError{Element: "PMID", Err: ErrMissingPMID}
	}
	id, err := strconv.ParseUint(pmid, 10, 64)
	if err != nil {
		return nil, &StructuralError{PMID: pmid, Element: "PMID", Err: err}
	}
	if mc.DateRevised == nil {
		return nil, missing(pmid, "DateRevised")
	}
	created, err := convertDate(mc.DateRevised)
	if err != nil {
		return nil, &StructuralError{PMID: pmid, Element: "DateRevised", Err: err}
	}
	var completed *flat.Date
	if mc.DateCompleted != nil {
		d, err := convertDate(mc.DateCompleted)
		if err != nil {
			return nil, &StructuralError{PMID: pmid, Element: "DateCompleted", Err: err}
		}
		completed = &d
	}
	art := mc.Article
	switch {
	case art == nil:
		return nil, missing(pmid, "Article")
	case art.ArticleTitle == nil:
		return nil, missing(pmid, "ArticleTitle")
	case art.Journal == nil:
		return nil, missing(pmid, "Journal")
	case art.Journal.Title == nil:
		return nil, missing(pmid, "Journal/Title")
	case art.PublicationTypeList == nil:
		return nil, missing(pmid, "PublicationTypeList")
	}
	info := mc.MedlineJournalInfo
	switch {
	case info == nil:
		return nil, missing(pmid, "MedlineJournalInfo")
	case info.NlmUniqueID == nil:
		return nil, missing(pmid, "MedlineJournalInfo/NlmUniqueID")
	case info.Country == nil:
		return nil, missing(pmid, "MedlineJournalInfo/Country")
	}
	if doc.PubmedData == nil || doc.PubmedData.ArticleIDList == nil {
		return nil, missing(pmid, "PubmedData/ArticleIdList")
	}
	record := &flat.Article{
		ID:            id,
		Title:         mixed.Flatten(*art.ArticleTitle),
		PubModel:      art.PubModel,
		DateCreated:   created,
		DateCompleted: completed,
		Keywords:      keywords(mc.KeywordList),
		Journal: flat.Journal{
			ID:           strings.TrimSpace(*info.NlmUniqueID),
			Country:      strings.TrimSpace(*info.Country),
			ISSN:         strings.TrimSpace(info.ISSNLinking),
			Title:        strings.TrimSpace(*art.Journal.Title),
			JournalIssue: journalIssue(art.Journal.JournalIssue),
		},
		PublicationTypes: publicationTypes(art.PublicationTypeList),
		ArticleIDs:       articleIDs(doc.PubmedData.ArticleIDList),
	}
	if art.AuthorList != nil {
		authors, skipped, err := c.Authors.Resolve(authorEntries(art.AuthorList))
		if err != nil {
			return nil, fmt.Errorf("pmid %s: %w", pmid, err)
		}
		c.Stats.SkippedAuthors.Add(uint64(skipped))
		record.Authors = authors
	}
	if art.GrantList != nil {
		record.Grants = grants(art.GrantList)
	}
	// Only the first reference list is used, further ones are ignored.
	var refs *pubmed.ReferenceList
	if len(doc.PubmedData.ReferenceList) > 0 {
		refs = &doc.PubmedData.ReferenceList[0]
	}
	result, err := c.References.Extract(id, refs)
	if err != nil {
		return nil, err
	}
	c.Stats.AddReferences(result.Before, result.After, result.Skipped)
	record.References = result.IDs
	return record, nil
}

func convertDate(d *pubmed.Date) (flat.Date, error) {
	year, err := strconv.ParseUint(strings.TrimSpace(d.Year), 10, 16)
	if err != nil {
		return flat.Date{}, fmt.Errorf("year: %w", err)
	}
	month, err := strconv.ParseUint(strings.TrimSpace(d.Month), 10, 8)
	if err != nil {
		return flat.Date{}, fmt.Errorf("month: %w", err)
	}
	day, err := strconv.ParseUint(strings.TrimSpace(d.Day), 10, 8)
	if err != nil {
		return flat.Date{}, fmt.Errorf("day: %w", err)
	}
	return flat.Date{Year: uint16(year), Month: uint8(month), Day: uint8(day)}, nil
}

// keywords flattens keywords of all lists, keeping the first occurrence of
// each keyword.
func keywords(lists []pubmed.KeywordList) []string {
	set := linkedhashset.New()
	for _, l := range lists {
		for _, k := range l.Keyword {
			if s := mixed.Flatten(k); s != "" {
				set.Add(s)
			}
		}
	}
	if set.Empty() {
		return nil
	}
	result := make([]string, 0, set.Size())
	for _, v := range set.Values() {
		result = append(result, v.(string))
	}
	return result
}

func journalIssue(ji *pubmed.JournalIssue) *flat.JournalIssue {
	if ji == nil {
		return nil
	}
	issue := &flat.JournalIssue{
		Volume: deref(ji.Volume),
		Issue:  deref(ji.Issue),
	}
	if issue.Volume == "" && issue.Issue == "" {
		return nil
	}
	return issue
}

func publicationTypes(l *pubmed.PublicationTypeList) (result []flat.PublicationType) {
	for _, pt := range l.PublicationType {
		result = append(result, flat.PublicationType{
			ID:   pt.UI,
			Name: strings.TrimSpace(pt.Name),
		})
	}
	return result
}

func grants(l *pubmed.GrantList) (result []flat.Grant) {
	for _, g := range l.Grant {
		result = append(result, flat.Grant{
			ID:      deref(g.GrantID),
			Acronym: deref(g.Acronym),
			Agency:  strings.TrimSpace(g.Agency),
			Country: deref(g.Country),
		})
	}
	return result
}

func articleIDs(l *pubmed.ArticleIDList) (result []flat.ArticleID) {
	for _, v := range l.ArticleID {
		result = append(result, flat.ArticleID{
			Type: v.IDType,
			ID:   strings.TrimSpace(v.Value),
		})
	}
	return result
}

// authorEntries unwraps the scalar values of each author list entry.
func authorEntries(l *pubmed.AuthorList) []author.Entry {
	entries := make([]author.Entry, 0, len(l.Author))
	for _, a := range l.Author {
		e := author.Entry{
			LastName:       strings.TrimSpace(a.LastName),
			ForeName:       strings.TrimSpace(a.ForeName),
			Initials:       strings.TrimSpace(a.Initials),
			CollectiveName: mixed.Flatten(a.CollectiveName),
		}
		for _, info := range a.AffiliationInfo {
			e.Affiliations = append(e.Affiliations, mixed.Flatten(info.Affiliation))
		}
		entries = append(entries, e)
	}
	return entries
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
