package citations

import (
	"errors"
	"fmt"
	"testing"

	apierrors "github.com/diogo/deploychat/internal/errors"
	"github.com/diogo/deploychat/internal/models"
)

func TestDetectRowShape(t *testing.T) {
	tests := []struct {
		name string
		row  map[string]any
		want Shape
	}{
		{
			name: "nil row",
			row:  nil,
			want: ShapeNone,
		},
		{
			name: "empty row",
			row:  map[string]any{},
			want: ShapeNone,
		},
		{
			name: "flat indexed",
			row: map[string]any{
				"CITATION_CONTENT_0": "text",
				"CITATION_SOURCE_0":  "doc.pdf",
			},
			want: ShapeFlatIndexed,
		},
		{
			name: "context string",
			row: map[string]any{
				"_LLM_CONTEXT": `[{"content":"c","link":"doc.pdf:3"}]`,
			},
			want: ShapeContext,
		},
		{
			name: "flat indexed wins over context",
			row: map[string]any{
				"CITATION_CONTENT_0": "text",
				"_LLM_CONTEXT":       `[]`,
			},
			want: ShapeFlatIndexed,
		},
		{
			name: "unrelated columns",
			row: map[string]any{
				"resultText": "answer",
			},
			want: ShapeNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectRowShape(tt.row); got != tt.want {
				t.Errorf("DetectRowShape() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromRowFlatIndexed(t *testing.T) {
	// n contiguous entries come back as exactly n citations in order
	for _, n := range []int{1, 2, 5} {
		row := map[string]any{}
		for i := 0; i < n; i++ {
			row[fmt.Sprintf("CITATION_CONTENT_%d", i)] = fmt.Sprintf("content %d", i)
			row[fmt.Sprintf("CITATION_SOURCE_%d", i)] = fmt.Sprintf("source-%d.pdf", i)
			row[fmt.Sprintf("CITATION_PAGE_%d", i)] = float64(i + 1)
		}

		got, err := FromRow(row)
		if err != nil {
			t.Fatalf("FromRow() error = %v", err)
		}
		if len(got) != n {
			t.Fatalf("FromRow() returned %d citations, want %d", len(got), n)
		}
		for i, c := range got {
			if c.Text != fmt.Sprintf("content %d", i) {
				t.Errorf("citation %d text = %q", i, c.Text)
			}
			if c.Source != fmt.Sprintf("source-%d.pdf", i) {
				t.Errorf("citation %d source = %q", i, c.Source)
			}
			if c.Page != fmt.Sprintf("%d", i+1) {
				t.Errorf("citation %d page = %q, want %q", i, c.Page, fmt.Sprintf("%d", i+1))
			}
		}
	}
}

func TestFromRowStopsAtGap(t *testing.T) {
	// Non-contiguous indices are not supported; extraction stops at the
	// first gap.
	row := map[string]any{
		"CITATION_CONTENT_0": "first",
		"CITATION_SOURCE_0":  "a.pdf",
		"CITATION_CONTENT_2": "third",
		"CITATION_SOURCE_2":  "c.pdf",
	}

	got, err := FromRow(row)
	if err != nil {
		t.Fatalf("FromRow() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("FromRow() returned %d citations, want 1", len(got))
	}
	if got[0].Text != "first" {
		t.Errorf("citation text = %q, want %q", got[0].Text, "first")
	}
}

func TestFromRowMissingPage(t *testing.T) {
	row := map[string]any{
		"CITATION_CONTENT_0": "text",
		"CITATION_SOURCE_0":  "doc.pdf",
	}

	got, err := FromRow(row)
	if err != nil {
		t.Fatalf("FromRow() error = %v", err)
	}
	if got[0].Page != "" {
		t.Errorf("missing page should stay empty, got %q", got[0].Page)
	}
}

func TestFromContext(t *testing.T) {
	context := `[
		{"content": "first snippet", "link": "handbook.pdf:12"},
		{"content": "second snippet", "link": "notes.txt:3"}
	]`

	got, err := FromContext(context)
	if err != nil {
		t.Fatalf("FromContext() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FromContext() returned %d citations, want 2", len(got))
	}
	if got[0].Source != "handbook.pdf" || got[0].Page != "12" {
		t.Errorf("citation 0 = %q page %q, want handbook.pdf page 12", got[0].Source, got[0].Page)
	}
	if got[1].Source != "notes.txt" || got[1].Page != "3" {
		t.Errorf("citation 1 = %q page %q, want notes.txt page 3", got[1].Source, got[1].Page)
	}
}

func TestFromContextLinkWithoutColon(t *testing.T) {
	// A link with no page separator loses its last character: upstream
	// assumes a dangling trailing colon and strips it unconditionally.
	// Intentionally preserved, see splitSourcePage.
	got, err := FromContext(`[{"content": "c", "link": "handbook.pdf"}]`)
	if err != nil {
		t.Fatalf("FromContext() error = %v", err)
	}
	if got[0].Page != "" {
		t.Errorf("page = %q, want empty", got[0].Page)
	}
	if got[0].Source != "handbook.pd" {
		t.Errorf("source = %q, want %q", got[0].Source, "handbook.pd")
	}
}

func TestFromContextTrailingColon(t *testing.T) {
	got, err := FromContext(`[{"content": "c", "link": "handbook.pdf:"}]`)
	if err != nil {
		t.Fatalf("FromContext() error = %v", err)
	}
	if got[0].Source != "handbook.pdf" {
		t.Errorf("source = %q, want %q", got[0].Source, "handbook.pdf")
	}
	if got[0].Page != "" {
		t.Errorf("page = %q, want empty", got[0].Page)
	}
}

func TestFromContextLastColonWins(t *testing.T) {
	got, err := FromContext(`[{"content": "c", "link": "https://host:8080/doc:7"}]`)
	if err != nil {
		t.Fatalf("FromContext() error = %v", err)
	}
	if got[0].Source != "https://host:8080/doc" {
		t.Errorf("source = %q", got[0].Source)
	}
	if got[0].Page != "7" {
		t.Errorf("page = %q, want 7", got[0].Page)
	}
}

func TestFromContextInvalidJSON(t *testing.T) {
	_, err := FromContext(`{not json`)
	if err == nil {
		t.Fatal("Expected error for invalid JSON context")
	}
	var parseErr *apierrors.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("error type = %T, want *ParseError", err)
	}
}

func TestFromContextEmpty(t *testing.T) {
	got, err := FromContext("")
	if err != nil {
		t.Fatalf("FromContext() error = %v", err)
	}
	if got != nil {
		t.Errorf("FromContext(\"\") = %v, want nil", got)
	}
}

func TestFromStructured(t *testing.T) {
	docs := []any{
		map[string]any{
			"content": "snippet one",
			"metadata": map[string]any{
				"source": "a.pdf",
				"page":   float64(4),
			},
		},
		map[string]any{
			"content":  "snippet two",
			"metadata": map[string]any{"source": "b.pdf"},
		},
		"not a document",
	}

	got := FromStructured(docs)
	if len(got) != 2 {
		t.Fatalf("FromStructured() returned %d citations, want 2", len(got))
	}
	want := models.Citation{Text: "snippet one", Source: "a.pdf", Page: "4"}
	if got[0] != want {
		t.Errorf("citation 0 = %+v, want %+v", got[0], want)
	}
	if got[1].Page != "" {
		t.Errorf("citation 1 page = %q, want empty", got[1].Page)
	}
}

func TestFromStructuredOrderPreserved(t *testing.T) {
	docs := []any{
		map[string]any{"content": "z", "metadata": map[string]any{"source": "z.pdf"}},
		map[string]any{"content": "a", "metadata": map[string]any{"source": "a.pdf"}},
		map[string]any{"content": "z", "metadata": map[string]any{"source": "z.pdf"}},
	}

	got := FromStructured(docs)
	// No dedup, no sort: upstream order comes through as-is
	if len(got) != 3 {
		t.Fatalf("FromStructured() returned %d citations, want 3", len(got))
	}
	if got[0].Source != "z.pdf" || got[1].Source != "a.pdf" || got[2].Source != "z.pdf" {
		t.Errorf("order not preserved: %+v", got)
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"12", "12"},
		{float64(12), "12"},
		{float64(12.5), "12.5"},
		{3, "3"},
	}

	for _, tt := range tests {
		if got := stringify(tt.in); got != tt.want {
			t.Errorf("stringify(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
