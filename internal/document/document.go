// Package document turns a confirmed booking batch into a paginated
// printable confirmation.
package document

import "github.com/google/uuid"

// EntriesPerPage is how many booking entries fit under one header before a
// new page is started.
const EntriesPerPage = 4

// Entry is one confirmed booking line on the document.
type Entry struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Service  string `json:"service"`
	Category string `json:"category"`
}

// Page holds the fixed header plus up to EntriesPerPage entries.
type Page struct {
	Patient string  `json:"patient"`
	User    string  `json:"user"`
	Entries []Entry `json:"entries"`
}

// Document is the rendered-on-demand confirmation for one batch.
type Document struct {
	BatchID uuid.UUID `json:"batch_id"`
	Patient string    `json:"patient"`
	User    string    `json:"user"`
	Pages   []Page    `json:"pages"`
}

// New paginates the entries in order: the header repeats on every page and
// a new page starts after every EntriesPerPage-th entry.
func New(batchID uuid.UUID, patient, user string, entries []Entry) *Document {
	doc := &Document{BatchID: batchID, Patient: patient, User: user}
	for start := 0; start < len(entries); start += EntriesPerPage {
		end := start + EntriesPerPage
		if end > len(entries) {
			end = len(entries)
		}
		doc.Pages = append(doc.Pages, Page{
			Patient: patient,
			User:    user,
			Entries: entries[start:end],
		})
	}
	return doc
}
