package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/deploychat/internal/errors"
	"github.com/diogo/deploychat/internal/models"
)

// Predict sends exactly one input row to the batch prediction API and
// returns the result row with response headers. The serialized request is
// size-checked locally before anything goes on the wire; the limit is
// enforced server-side too.
func (c *Client) Predict(row map[string]any) (map[string]any, http.Header, error) {
	payload, err := json.Marshal([]map[string]any{row})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal prediction input: %w", err)
	}

	if len(payload) >= models.MaxPredictionInputSizeBytes {
		return nil, nil, apierrors.NewValidationError(
			"prompt input is too large: %d bytes, max allowed size is: %d bytes",
			len(payload), models.MaxPredictionInputSizeBytes)
	}

	url := c.predictionURL()
	body, headers, err := c.doRequest(http.MethodPost, url, bytes.NewReader(payload), c.authHeaders(), "predict", models.PredictionsTimeout)
	if err != nil {
		return nil, nil, err
	}

	result, err := parsePredictionRow(body)
	if err != nil {
		return nil, headers, err
	}
	return result, headers, nil
}

// parsePredictionRow extracts the single result row from a prediction
// response. The server wraps rows in a "data" array; prediction values
// and extra model output columns are flattened into one map.
func parsePredictionRow(body []byte) (map[string]any, error) {
	parsed := gjson.ParseBytes(body)

	rowResult := parsed.Get("data.0")
	if !rowResult.Exists() {
		rowResult = parsed.Get("0")
	}
	if !rowResult.Exists() {
		return nil, apierrors.NewParseError("no prediction rows in response", "data.0")
	}

	row := make(map[string]any)
	rowResult.ForEach(func(key, value gjson.Result) bool {
		// extra model output columns are flattened next to the prediction
		if key.String() == "extraModelOutput" {
			value.ForEach(func(k, v gjson.Result) bool {
				row[k.String()] = v.Value()
				return true
			})
			return true
		}
		row[key.String()] = value.Value()
		return true
	})
	return row, nil
}

// StripColumnSuffixes renames result row columns by removing the
// deployment-imposed suffixes before any lookup.
func StripColumnSuffixes(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for key, value := range row {
		out[cleanColumnName(key)] = value
	}
	return out
}

func cleanColumnName(name string) string {
	for _, suffix := range models.ResultColumnSuffixes {
		name = strings.ReplaceAll(name, suffix, "")
	}
	return name
}
