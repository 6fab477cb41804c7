package api

import (
	"errors"
	"strings"
	"testing"

	apierrors "github.com/diogo/deploychat/internal/errors"
	"github.com/diogo/deploychat/internal/models"
)

func TestParsePredictionRow(t *testing.T) {
	body := []byte(`{
		"data": [{
			"prediction": "the answer",
			"resultText_PREDICTION": "the answer",
			"extraModelOutput": {
				"datarobot_latency": 1.5,
				"CITATION_CONTENT_0": "snippet"
			}
		}]
	}`)

	row, err := parsePredictionRow(body)
	if err != nil {
		t.Fatalf("parsePredictionRow() error = %v", err)
	}
	if row["prediction"] != "the answer" {
		t.Errorf("prediction = %v", row["prediction"])
	}
	// extraModelOutput columns are flattened next to the prediction
	if row["datarobot_latency"] != 1.5 {
		t.Errorf("latency = %v, want 1.5", row["datarobot_latency"])
	}
	if row["CITATION_CONTENT_0"] != "snippet" {
		t.Errorf("citation content = %v", row["CITATION_CONTENT_0"])
	}
	if _, ok := row["extraModelOutput"]; ok {
		t.Error("extraModelOutput wrapper should not survive flattening")
	}
}

func TestParsePredictionRowBareArray(t *testing.T) {
	row, err := parsePredictionRow([]byte(`[{"prediction": "x"}]`))
	if err != nil {
		t.Fatalf("parsePredictionRow() error = %v", err)
	}
	if row["prediction"] != "x" {
		t.Errorf("prediction = %v", row["prediction"])
	}
}

func TestParsePredictionRowEmpty(t *testing.T) {
	_, err := parsePredictionRow([]byte(`{"data": []}`))
	if err == nil {
		t.Fatal("Expected error for empty prediction response")
	}
	var parseErr *apierrors.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("error type = %T, want *ParseError", err)
	}
}

func TestStripColumnSuffixes(t *testing.T) {
	row := map[string]any{
		"resultText_PREDICTION": "answer",
		"citations_OUTPUT":      "c",
		"plain":                 "v",
	}

	got := StripColumnSuffixes(row)
	if got["resultText"] != "answer" {
		t.Errorf("resultText = %v", got["resultText"])
	}
	if got["citations"] != "c" {
		t.Errorf("citations = %v", got["citations"])
	}
	if got["plain"] != "v" {
		t.Errorf("plain = %v", got["plain"])
	}
	if _, ok := got["resultText_PREDICTION"]; ok {
		t.Error("suffixed key should be gone")
	}
}

func TestPredictRejectsOversizedInput(t *testing.T) {
	c := &Client{deploymentID: "dep"}
	row := map[string]any{
		"promptText": strings.Repeat("a", models.MaxPredictionInputSizeBytes),
	}

	_, _, err := c.Predict(row)
	if err == nil {
		t.Fatal("Expected error for oversized input")
	}
	var vErr *apierrors.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("error type = %T, want *ValidationError", err)
	}
}
