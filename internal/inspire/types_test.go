package inspire

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRecordIDFromURL(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"https://inspirehep.net/api/literature/1234", "1234", true},
		{"https://inspirehep.net/api/literature/1234/", "1234", true},
		{"https://inspirehep.net/api/literature/1234?format=json", "1234", true},
		{"1234", "1234", true},
		{"", "", false},
		{"/", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := RecordIDFromURL(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("RecordIDFromURL(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDecodeRecord(t *testing.T) {
	payload := json.RawMessage(`{
		"metadata": {
			"control_number": 2736041,
			"titles": [{"title": "A seed paper", "source": "arXiv"}],
			"references": [
				{"record": {"$ref": "https://inspirehep.net/api/literature/11"}, "reference": {"misc": ["Linked"]}},
				{"reference": {"misc": ["Unlinked", "ref"]}}
			]
		}
	}`)

	r, err := DecodeRecord(payload)
	if err != nil {
		t.Fatalf("DecodeRecord() error = %v", err)
	}
	if r.RecordID() != "2736041" {
		t.Errorf("RecordID() = %q, want 2736041", r.RecordID())
	}
	title, err := r.PrimaryTitle()
	if err != nil || title != "A seed paper" {
		t.Errorf("PrimaryTitle() = %q, %v", title, err)
	}
	linked := r.LinkedReferences()
	if len(linked) != 1 {
		t.Fatalf("LinkedReferences() returned %d, want 1", len(linked))
	}
	if id, _ := linked[0].RecordID(); id != "11" {
		t.Errorf("linked RecordID() = %q, want 11", id)
	}
	if got := r.Metadata.References[1].MiscText(); got != "Unlinked ref" {
		t.Errorf("MiscText() = %q, want %q", got, "Unlinked ref")
	}
}

func TestPrimaryTitle_Missing(t *testing.T) {
	r := &Record{}
	if _, err := r.PrimaryTitle(); !errors.Is(err, ErrMissingField) {
		t.Errorf("PrimaryTitle() error = %v, want ErrMissingField", err)
	}
	if r.RecordID() != "" {
		t.Errorf("RecordID() = %q, want empty", r.RecordID())
	}
}

func TestExtractSearchTitle(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantErr error
	}{
		{"found", `{"hits":{"hits":[{"metadata":{"titles":[{"title":"T"}]}}]}}`, "T", nil},
		{"no hits", `{"hits":{"hits":[]}}`, "", ErrMissingField},
		{"no titles", `{"hits":{"hits":[{"metadata":{}}]}}`, "", ErrMissingField},
		{"empty object", `{}`, "", ErrMissingField},
		{"not json", `[`, "", ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractSearchTitle(json.RawMessage(tt.payload))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ExtractSearchTitle() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractSearchTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
