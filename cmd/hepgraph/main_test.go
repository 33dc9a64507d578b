package main

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Benkendorfer/HEP-paper-graph/internal/graph"
	"github.com/Benkendorfer/HEP-paper-graph/internal/inspire"
	"github.com/Benkendorfer/HEP-paper-graph/internal/storage"
)

func TestNormalizeSeeds(t *testing.T) {
	got := normalizeSeeds([]string{"2312.03797", " arXiv:2312.03797", "ARXIV:1207.7214", "", "hep-ph/9901234"})
	want := []string{"2312.03797", "1207.7214", "hep-ph/9901234"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalizeSeeds() = %v, want %v", got, want)
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"not found", fmt.Errorf("%w: x", inspire.ErrNotFound), ExitNotFound},
		{"timeout", fmt.Errorf("%w: x", inspire.ErrNetworkTimeout), ExitNetworkError},
		{"connection", fmt.Errorf("%w: x", inspire.ErrConnectionFailure), ExitNetworkError},
		{"rate limited", inspire.ErrRateLimited, ExitNetworkError},
		{"api error", &inspire.APIError{StatusCode: 502, URL: "u"}, ExitNetworkError},
		{"invalid response", fmt.Errorf("%w: x", inspire.ErrInvalidResponse), ExitDataError},
		{"no seeds", graph.ErrNoSeeds, ExitDataError},
		{"other", errors.New("boom"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer title here", 10, "a longe..."},
		{"ünïcödé title", 8, "ünïcö..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatLabels(t *testing.T) {
	if got := formatLabels(nil); got != "" {
		t.Errorf("formatLabels(nil) = %q", got)
	}
	got := formatLabels(map[string]string{"result": "hit", "cache": "response"})
	if want := "{cache=response,result=hit}"; got != want {
		t.Errorf("formatLabels() = %q, want %q", got, want)
	}
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()

	if err := outputJSON(StatusResponse{Status: "written", Path: "graph.html"}); err != nil {
		t.Fatalf("outputJSON() error = %v", err)
	}
	want := "{\n  \"status\": \"written\",\n  \"path\": \"graph.html\"\n}\n"
	if buf.String() != want {
		t.Errorf("outputJSON() = %q, want %q", buf.String(), want)
	}
}

func TestDescribeRecord(t *testing.T) {
	seed := graph.NewNode("1", "Seed", graph.RoleSeed)
	hub := graph.NewNode("2", "Hub", graph.RoleReference)
	hub.AddParent("1")
	hub.AddParent("3")
	leaf := graph.NewNode("3", "Leaf", graph.RoleReference)
	leaf.AddParent("1")
	path := filepath.Join(t.TempDir(), "graph.jsonl")
	if err := storage.WriteGraph(path, graph.NewGraph([]*graph.Node{seed, hub, leaf})); err != nil {
		t.Fatalf("WriteGraph() error = %v", err)
	}

	db, cleanup := openSnapshot(path, "test")
	defer cleanup()

	rec, err := db.GetByID("3")
	if err != nil || rec == nil {
		t.Fatalf("GetByID(3) = %v, %v", rec, err)
	}
	res, err := describeRecord(db, rec)
	if err != nil {
		t.Fatalf("describeRecord() error = %v", err)
	}
	if !reflect.DeepEqual(res.Record.Parents, []string{"1"}) {
		t.Errorf("Parents = %v, want [1]", res.Record.Parents)
	}
	if !reflect.DeepEqual(res.Cites, []string{"2"}) {
		t.Errorf("Cites = %v, want [2]", res.Cites)
	}
	if res.GraphNodes != 3 || res.GraphEdges != 3 {
		t.Errorf("graph = %d nodes, %d edges; want 3, 3", res.GraphNodes, res.GraphEdges)
	}

	seedRec, _ := db.GetByID("1")
	res, err = describeRecord(db, seedRec)
	if err != nil {
		t.Fatalf("describeRecord() error = %v", err)
	}
	if res.Record.Parents == nil || len(res.Record.Parents) != 0 {
		t.Errorf("seed Parents = %#v, want empty slice", res.Record.Parents)
	}
}
