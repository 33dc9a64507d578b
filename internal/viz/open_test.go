package viz

import (
	"path/filepath"
	"testing"
)

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos    string
		wantArg string
		wantErr bool
	}{
		{"darwin", "open", false},
		{"linux", "xdg-open", false},
		{"windows", "rundll32", false},
		{"plan9", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd, err := openCommand(tt.goos, "/tmp/graph.html")
			if tt.wantErr {
				if err == nil {
					t.Error("openCommand() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("openCommand() error = %v", err)
			}
			if cmd.Args[0] != tt.wantArg {
				t.Errorf("Args[0] = %q, want %q", cmd.Args[0], tt.wantArg)
			}
			if last := cmd.Args[len(cmd.Args)-1]; last != "/tmp/graph.html" {
				t.Errorf("last arg = %q, want the path", last)
			}
		})
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if err := Open(filepath.Join(t.TempDir(), "absent.html")); err == nil {
		t.Error("Open() expected error for missing file")
	}
}
