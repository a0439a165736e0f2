package csvexport

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCommaInsideValueBecomesSemicolon(t *testing.T) {
	r := Report{
		Name:    "users",
		Columns: []string{"id", "name"},
		Rows:    []Row{{"id": 1, "name": "A,B"}},
	}

	if got, want := r.Encode(), "id,name\n1,A;B"; got != want {
		t.Fatalf("Encode() = %q, want %q", got, want)
	}
}

func TestNestedValueKeepsColumnCount(t *testing.T) {
	r := Report{
		Name:    "swaps",
		Columns: []string{"id", "skills", "active"},
		Rows:    []Row{{"id": 0, "skills": []string{"Go", "Rust"}, "active": false}},
	}

	got := r.Encode()
	if want := "id,skills,active\n0,[\"Go\";\"Rust\"],false"; got != want {
		t.Fatalf("Encode() = %q, want %q", got, want)
	}
	lines := strings.Split(got, "\n")
	if n := strings.Count(lines[1], ","); n != 2 {
		t.Fatalf("row has %d separators, want 2", n)
	}
}

func TestFilename(t *testing.T) {
	if got := (Report{Name: "swaps"}).Filename(); got != "swaps_report.csv" {
		t.Fatalf("Filename() = %q", got)
	}
}

func TestFormatValue(t *testing.T) {
	id := uuid.MustParse("0190a6f1-0000-7000-8000-000000000001")
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	loc := "Austin, TX"

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"zero int", 0, "0"},
		{"false", false, "false"},
		{"float", 4.67, "4.67"},
		{"uuid", id, id.String()},
		{"time", ts, "2024-05-01T12:00:00Z"},
		{"nil string ptr", (*string)(nil), ""},
		{"string ptr", &loc, "Austin; TX"},
		{"newline", "line1\nline2", "line1 line2"},
		{"nested object", map[string]any{"a": 1, "b": 2}, `{"a":1;"b":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.in); got != tt.want {
				t.Fatalf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEmptyReport(t *testing.T) {
	if got := (Report{Name: "feedback"}).Encode(); got != "" {
		t.Fatalf("empty report = %q", got)
	}
	header := Report{Name: "feedback", Columns: []string{"id", "rating"}}
	if got := header.Encode(); got != "id,rating" {
		t.Fatalf("header only = %q", got)
	}
}
