package inspire

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is the subset of an INSPIRE literature record used to build the graph.
type Record struct {
	Metadata Metadata `json:"metadata"`
}

// Metadata holds the record fields we read.
type Metadata struct {
	ControlNumber int64       `json:"control_number"`
	Titles        []Title     `json:"titles"`
	References    []Reference `json:"references"`
}

// Title is one entry of metadata.titles.
type Title struct {
	Title  string `json:"title"`
	Source string `json:"source,omitempty"`
}

// Reference is one entry of metadata.references.
type Reference struct {
	Record    *RecordLink   `json:"record,omitempty"`
	Reference ReferenceInfo `json:"reference"`
}

// RecordLink points at a canonical INSPIRE record.
type RecordLink struct {
	Ref string `json:"$ref"`
}

// ReferenceInfo is the free-form citation text attached to a reference.
type ReferenceInfo struct {
	Misc []string `json:"misc,omitempty"`
}

// DecodeRecord parses a literature or arXiv lookup response.
func DecodeRecord(payload json.RawMessage) (*Record, error) {
	var r Record
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("%w: parsing record: %v", ErrInvalidResponse, err)
	}
	return &r, nil
}

// PrimaryTitle returns metadata.titles[0].title.
func (r *Record) PrimaryTitle() (string, error) {
	if len(r.Metadata.Titles) == 0 || r.Metadata.Titles[0].Title == "" {
		return "", fmt.Errorf("%w: metadata.titles[0].title", ErrMissingField)
	}
	return r.Metadata.Titles[0].Title, nil
}

// RecordID returns the control number as a string, or "" if absent.
func (r *Record) RecordID() string {
	if r.Metadata.ControlNumber == 0 {
		return ""
	}
	return strconv.FormatInt(r.Metadata.ControlNumber, 10)
}

// LinkedReferences returns the references that carry a record link.
func (r *Record) LinkedReferences() []Reference {
	var out []Reference
	for _, ref := range r.Metadata.References {
		if _, ok := ref.RecordID(); ok {
			out = append(out, ref)
		}
	}
	return out
}

// RecordID extracts the record id from the trailing path segment of
// record.$ref, e.g. ".../api/literature/1234" → "1234".
func (ref Reference) RecordID() (string, bool) {
	if ref.Record == nil {
		return "", false
	}
	return RecordIDFromURL(ref.Record.Ref)
}

// MiscText joins the free-form citation text.
func (ref Reference) MiscText() string {
	return strings.TrimSpace(strings.Join(ref.Reference.Misc, " "))
}

// RecordIDFromURL returns the last non-empty path segment of a record URL.
func RecordIDFromURL(u string) (string, bool) {
	u = strings.TrimSpace(u)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	u = strings.TrimRight(u, "/")
	if u == "" {
		return "", false
	}
	id := u[strings.LastIndexByte(u, '/')+1:]
	if id == "" {
		return "", false
	}
	return id, true
}

// searchResponse is the shape of a literature search with fields=titles.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Metadata struct {
				Titles []Title `json:"titles"`
			} `json:"metadata"`
		} `json:"hits"`
	} `json:"hits"`
}

// ExtractSearchTitle reads hits.hits[0].metadata.titles[0].title.
func ExtractSearchTitle(payload json.RawMessage) (string, error) {
	var resp searchResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", fmt.Errorf("%w: parsing search: %v", ErrInvalidResponse, err)
	}
	hits := resp.Hits.Hits
	if len(hits) == 0 || len(hits[0].Metadata.Titles) == 0 || hits[0].Metadata.Titles[0].Title == "" {
		return "", fmt.Errorf("%w: hits.hits[0].metadata.titles[0].title", ErrMissingField)
	}
	return hits[0].Metadata.Titles[0].Title, nil
}
