package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/despesalab/categorizer/internal/expense"
)

// stubPredictor returns canned labels or a canned error and records
// how it was called.
type stubPredictor struct {
	labels []int
	err    error
	calls  int
	lastIn []expense.Record
}

func (s *stubPredictor) Predict(rows []expense.Record) ([]int, error) {
	s.calls++
	s.lastIn = rows
	if s.err != nil {
		return nil, s.err
	}
	if len(s.labels) >= len(rows) {
		return s.labels[:len(rows)], nil
	}
	return s.labels, nil
}

func doRequest(t *testing.T, stub *stubPredictor, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	srv := New(stub, "test")
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestPredictEchoesInput(t *testing.T) {
	stub := &stubPredictor{labels: []int{5}}

	rec := doRequest(t, stub, http.MethodPost, "/predict",
		`{"name": "Pharmacy", "amount_cents": 5000.0}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		CategoryID  int     `json:"category_id"`
		Name        string  `json:"name"`
		AmountCents float64 `json:"amount_cents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.CategoryID)
	assert.Equal(t, "Pharmacy", resp.Name)
	assert.Equal(t, 5000.0, resp.AmountCents)
	assert.Equal(t, 1, stub.calls)
}

func TestPredictMissingFieldIs422(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"amount_cents": 5000}`},
		{"missing amount", `{"name": "Pharmacy"}`},
		{"empty body", `{}`},
		{"mistyped amount", `{"name": "Pharmacy", "amount_cents": "abc"}`},
		{"mistyped name", `{"name": 12, "amount_cents": 5000}`},
		{"not json", `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubPredictor{labels: []int{5}}

			rec := doRequest(t, stub, http.MethodPost, "/predict", tt.body)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			// Validation happens before any model invocation.
			assert.Zero(t, stub.calls)
		})
	}
}

func TestPredictFailureIs500WithMarker(t *testing.T) {
	stub := &stubPredictor{err: fmt.Errorf("feature width mismatch")}

	rec := doRequest(t, stub, http.MethodPost, "/predict",
		`{"name": "Pharmacy", "amount_cents": 5000}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Detail, "Erro ao fazer predição: ")
	assert.Contains(t, resp.Detail, "feature width mismatch")
}

func TestPredictShortResultIs500(t *testing.T) {
	// A predictor that returns no label for the single record must
	// surface as a 500, not a panic.
	stub := &stubPredictor{labels: []int{}}

	rec := doRequest(t, stub, http.MethodPost, "/predict",
		`{"name": "Pharmacy", "amount_cents": 5000}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Detail, "Erro ao fazer predição: ")
}

func TestBatchPreservesOrder(t *testing.T) {
	stub := &stubPredictor{labels: []int{1, 2, 3}}

	rec := doRequest(t, stub, http.MethodPost, "/predict/batch",
		`{"expenses": [
			{"name": "a", "amount_cents": 100},
			{"name": "b", "amount_cents": 200},
			{"name": "c", "amount_cents": 300}
		]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Predictions []struct {
			CategoryID  int     `json:"category_id"`
			Name        string  `json:"name"`
			AmountCents float64 `json:"amount_cents"`
		} `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Predictions, 3)
	for i, want := range []int{1, 2, 3} {
		assert.Equal(t, want, resp.Predictions[i].CategoryID)
	}
	assert.Equal(t, "a", resp.Predictions[0].Name)
	assert.Equal(t, 100.0, resp.Predictions[0].AmountCents)

	// One batched call, not one per row.
	assert.Equal(t, 1, stub.calls)
	assert.Len(t, stub.lastIn, 3)
}

func TestBatchEmptyListSkipsModel(t *testing.T) {
	stub := &stubPredictor{labels: []int{1}}

	rec := doRequest(t, stub, http.MethodPost, "/predict/batch", `{"expenses": []}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"predictions": []}`, rec.Body.String())
	assert.Zero(t, stub.calls)
}

func TestBatchValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing expenses", `{}`},
		{"mistyped expenses", `{"expenses": "nope"}`},
		{"invalid item", `{"expenses": [{"name": "a"}]}`},
		{"not json", `[`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubPredictor{labels: []int{1}}

			rec := doRequest(t, stub, http.MethodPost, "/predict/batch", tt.body)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Zero(t, stub.calls)
		})
	}
}

func TestBatchFailureIs500WithMarkerAndNoPartialResults(t *testing.T) {
	stub := &stubPredictor{err: fmt.Errorf("model exploded")}

	rec := doRequest(t, stub, http.MethodPost, "/predict/batch",
		`{"expenses": [{"name": "a", "amount_cents": 100}]}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp struct {
		Detail      string `json:"detail"`
		Predictions []any  `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Detail, "Erro ao fazer predições em lote: ")
	assert.Empty(t, resp.Predictions)
}

func TestHealth(t *testing.T) {
	stub := &stubPredictor{labels: []int{1}}

	rec := doRequest(t, stub, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "healthy", "model_loaded": true}`, rec.Body.String())
}

func TestRootDescribesEndpoints(t *testing.T) {
	stub := &stubPredictor{labels: []int{1}}

	rec := doRequest(t, stub, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "test", resp["version"])
	assert.Contains(t, resp, "endpoints")
}

func TestMethodNotAllowed(t *testing.T) {
	stub := &stubPredictor{labels: []int{1}}

	rec := doRequest(t, stub, http.MethodGet, "/predict", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
