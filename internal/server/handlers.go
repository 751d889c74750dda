package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/despesalab/categorizer/internal/expense"
)

// predictRequest mirrors the POST /predict body. Pointer fields let
// validation tell a missing field from a zero value.
type predictRequest struct {
	Name        *string  `json:"name"`
	AmountCents *float64 `json:"amount_cents"`
}

type batchRequest struct {
	Expenses *[]predictRequest `json:"expenses"`
}

type predictionResponse struct {
	CategoryID  int     `json:"category_id"`
	Name        string  `json:"name"`
	AmountCents float64 `json:"amount_cents"`
}

type batchResponse struct {
	Predictions []predictionResponse `json:"predictions"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Expense category prediction API",
		"version": s.version,
		"endpoints": map[string]string{
			"/predict":       "POST - predict the category of one expense",
			"/predict/batch": "POST - predict categories for a batch of expenses",
			"/health":        "GET - service health",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"model_loaded": s.predictor != nil,
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := req.validate(); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	labels, err := s.predictor.Predict([]expense.Record{{
		Name:        *req.Name,
		AmountCents: *req.AmountCents,
	}})
	if err != nil {
		slog.ErrorContext(r.Context(), "Prediction failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Detail: fmt.Sprintf("Erro ao fazer predição: %v", err),
		})
		return
	}
	if len(labels) != 1 {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Detail: fmt.Sprintf("Erro ao fazer predição: expected 1 prediction, got %d", len(labels)),
		})
		return
	}

	writeJSON(w, http.StatusOK, predictionResponse{
		CategoryID:  labels[0],
		Name:        *req.Name,
		AmountCents: *req.AmountCents,
	})
}

func (s *Server) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Expenses == nil {
		writeValidationError(w, "field expenses is required")
		return
	}
	for i, item := range *req.Expenses {
		if err := item.validate(); err != nil {
			writeValidationError(w, fmt.Sprintf("expenses[%d]: %v", i, err))
			return
		}
	}

	// An empty batch never touches the model.
	if len(*req.Expenses) == 0 {
		writeJSON(w, http.StatusOK, batchResponse{Predictions: []predictionResponse{}})
		return
	}

	records := make([]expense.Record, len(*req.Expenses))
	for i, item := range *req.Expenses {
		records[i] = expense.Record{
			Name:        *item.Name,
			AmountCents: *item.AmountCents,
		}
	}

	// One batched call, predictions in input order.
	labels, err := s.predictor.Predict(records)
	if err != nil {
		slog.ErrorContext(r.Context(), "Batch prediction failed", "error", err, "size", len(records))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Detail: fmt.Sprintf("Erro ao fazer predições em lote: %v", err),
		})
		return
	}
	if len(labels) != len(records) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Detail: fmt.Sprintf("Erro ao fazer predições em lote: expected %d predictions, got %d", len(records), len(labels)),
		})
		return
	}

	resp := batchResponse{Predictions: make([]predictionResponse, len(records))}
	for i, rec := range records {
		resp.Predictions[i] = predictionResponse{
			CategoryID:  labels[i],
			Name:        rec.Name,
			AmountCents: rec.AmountCents,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (r *predictRequest) validate() error {
	if r.Name == nil {
		return fmt.Errorf("field name is required")
	}
	if r.AmountCents == nil {
		return fmt.Errorf("field amount_cents is required")
	}
	return nil
}

func writeValidationError(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
