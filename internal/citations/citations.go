// Package citations normalizes the citation payloads returned by LLM
// deployments into one canonical form.
//
// Upstream encodes citations in three incompatible shapes:
//
//  1. a structured list of document objects with nested metadata,
//  2. flat indexed row columns (CITATION_CONTENT_0, CITATION_SOURCE_0, ...),
//  3. a JSON-encoded context string whose records carry a "source:page" link.
//
// The shape is resolved up front by marker-field detection, never by
// exception-driven fallback.
package citations

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/deploychat/internal/errors"
	"github.com/diogo/deploychat/internal/models"
)

// Shape identifies which upstream citation encoding a payload uses.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeStructured
	ShapeFlatIndexed
	ShapeContext
)

func (s Shape) String() string {
	switch s {
	case ShapeStructured:
		return "structured"
	case ShapeFlatIndexed:
		return "flat-indexed"
	case ShapeContext:
		return "context-string"
	default:
		return "none"
	}
}

// DetectRowShape inspects a prediction/moderation row and reports which
// citation encoding it carries. The flat-indexed form wins over the
// context-string form; the latter only applies when no indexed columns
// exist at all.
func DetectRowShape(row map[string]any) Shape {
	if row == nil {
		return ShapeNone
	}
	if flatIndexedCount(row) > 0 {
		return ShapeFlatIndexed
	}
	if _, ok := row[models.LLMContextKey]; ok {
		return ShapeContext
	}
	return ShapeNone
}

// FromRow extracts citations from a prediction result row or a moderation
// object, resolving the encoding via DetectRowShape.
func FromRow(row map[string]any) ([]models.Citation, error) {
	switch DetectRowShape(row) {
	case ShapeFlatIndexed:
		return fromFlatIndexed(row), nil
	case ShapeContext:
		return FromContext(stringify(row[models.LLMContextKey]))
	default:
		return nil, nil
	}
}

// FromStructured converts the structured document-list form: objects with
// a content field and metadata.{source,page}. Missing optional fields are
// omitted, never defaulted to a sentinel.
func FromStructured(docs []any) []models.Citation {
	if len(docs) == 0 {
		return nil
	}
	out := make([]models.Citation, 0, len(docs))
	for _, raw := range docs {
		doc, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		c := models.Citation{Text: stringify(doc["content"])}
		if meta, ok := doc["metadata"].(map[string]any); ok {
			c.Source = stringify(meta["source"])
			c.Page = stringify(meta["page"])
		}
		out = append(out, c)
	}
	return out
}

// fromFlatIndexed walks CITATION_CONTENT_i columns contiguously from zero.
// Non-contiguous indices are not supported: extraction stops at the first
// gap, matching the upstream contract.
func fromFlatIndexed(row map[string]any) []models.Citation {
	n := flatIndexedCount(row)
	out := make([]models.Citation, 0, n)
	for i := 0; i < n; i++ {
		content, ok := row[models.CitationContentPrefix+strconv.Itoa(i)]
		if !ok {
			break
		}
		out = append(out, models.Citation{
			Text:   stringify(content),
			Source: stringify(row[models.CitationSourcePrefix+strconv.Itoa(i)]),
			Page:   stringify(row[models.CitationPagePrefix+strconv.Itoa(i)]),
		})
	}
	return out
}

// FromContext parses the _LLM_CONTEXT fallback: a JSON string of records
// with a content field and a single "source:page" link field.
func FromContext(context string) ([]models.Citation, error) {
	if strings.TrimSpace(context) == "" {
		return nil, nil
	}
	if !gjson.Valid(context) {
		return nil, apierrors.NewParseError("context field is not valid JSON", models.LLMContextKey)
	}
	parsed := gjson.Parse(context)
	if !parsed.IsArray() {
		return nil, apierrors.NewParseError("context field is not a JSON array", models.LLMContextKey)
	}

	var out []models.Citation
	parsed.ForEach(func(_, record gjson.Result) bool {
		source, page := splitSourcePage(record.Get("link").String())
		out = append(out, models.Citation{
			Text:   record.Get("content").String(),
			Source: source,
			Page:   page,
		})
		return true
	})
	return out, nil
}

var sourcePageRe = regexp.MustCompile(`^(.*):(\d+)$`)

// splitSourcePage splits a "source:page" link on its last colon. When no
// numeric page suffix is present the trailing character is dropped from
// the source, assuming it is a dangling separator; links without one lose
// their last character too. Kept as-is for upstream compatibility.
func splitSourcePage(link string) (source, page string) {
	if m := sourcePageRe.FindStringSubmatch(link); m != nil {
		return m[1], m[2]
	}
	if link == "" {
		return "", ""
	}
	runes := []rune(link)
	return string(runes[:len(runes)-1]), ""
}

// flatIndexedCount counts columns carrying indexed citation content.
func flatIndexedCount(row map[string]any) int {
	n := 0
	for key := range row {
		if strings.HasPrefix(key, models.CitationContentPrefix) {
			n++
		}
	}
	return n
}

// stringify renders an upstream JSON value for citation fields. Whole
// floats print without a fractional part because JSON numbers decode to
// float64 and page numbers are integral.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}
