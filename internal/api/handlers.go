package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/reckon/internal/ledger"
	"github.com/example/reckon/internal/money"
	"github.com/example/reckon/internal/record"
)

// transactionRequest mirrors one CSV input row. Amount stays a string so
// values keep their exact decimal representation across the wire.
type transactionRequest struct {
	Type   string  `json:"type"`
	Client uint16  `json:"client"`
	Tx     uint32  `json:"tx"`
	Amount *string `json:"amount,omitempty"`
}

type transactionResult struct {
	Client uint16 `json:"client"`
	Tx     uint32 `json:"tx"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type submitResponse struct {
	RequestID string              `json:"request_id,omitempty"`
	Results   []transactionResult `json:"results"`
}

type accountResponse struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

type listAccountsResponse struct {
	RequestID string            `json:"request_id,omitempty"`
	Accounts  []accountResponse `json:"accounts"`
}

const (
	statusApplied  = "applied"
	statusRejected = "rejected"
)

func handleSubmitTransactions(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Settler == nil {
			writeError(w, r, http.StatusServiceUnavailable, "engine_unavailable")
			return
		}

		reqs, err := decodeBody(r.Body)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		txs, err := toTransactions(reqs)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "validation_error")
			return
		}

		results := make([]transactionResult, 0, len(txs))
		for _, tx := range txs {
			res := transactionResult{Client: tx.Client, Tx: tx.Tx, Status: statusApplied}

			if err := deps.Settler.Apply(tx); err != nil {
				reason := ledger.Reason(err)
				if reason == "" {
					writeError(w, r, http.StatusInternalServerError, "audit_failed")
					return
				}
				res.Status = statusRejected
				res.Reason = reason
			}

			results = append(results, res)
		}

		writeJSON(w, r, http.StatusOK, submitResponse{
			RequestID: middleware.GetReqID(r.Context()),
			Results:   results,
		})
	}
}

// decodeBody accepts either a single transaction object or an array.
func decodeBody(body io.Reader) ([]transactionRequest, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	var reqs []transactionRequest
	if err := json.Unmarshal(data, &reqs); err == nil {
		return reqs, nil
	}

	var single transactionRequest
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, err
	}

	return []transactionRequest{single}, nil
}

// toTransactions applies the same value rules as the CSV reader: known
// type tags, trimmed fields, amounts truncated to the ingress scale.
func toTransactions(reqs []transactionRequest) ([]record.Transaction, error) {
	txs := make([]record.Transaction, 0, len(reqs))

	for _, req := range reqs {
		typ, err := record.ParseType(strings.TrimSpace(req.Type))
		if err != nil {
			return nil, err
		}

		tx := record.Transaction{Type: typ, Client: req.Client, Tx: req.Tx}
		if req.Amount != nil {
			amount, err := money.Parse(*req.Amount)
			if err != nil {
				return nil, err
			}
			tx.Amount = &amount
		}

		txs = append(txs, tx)
	}

	return txs, nil
}

func handleListAccounts(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Settler == nil {
			writeError(w, r, http.StatusServiceUnavailable, "engine_unavailable")
			return
		}

		snapshots := deps.Settler.Snapshots()

		accounts := make([]accountResponse, 0, len(snapshots))
		for _, snap := range snapshots {
			accounts = append(accounts, newAccountResponse(snap))
		}

		writeJSON(w, r, http.StatusOK, listAccountsResponse{
			RequestID: middleware.GetReqID(r.Context()),
			Accounts:  accounts,
		})
	}
}

func handleGetAccount(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Settler == nil {
			writeError(w, r, http.StatusServiceUnavailable, "engine_unavailable")
			return
		}

		client, err := strconv.ParseUint(chi.URLParam(r, "client"), 10, 16)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "validation_error")
			return
		}

		snap, err := deps.Settler.Snapshot(uint16(client))
		if err != nil {
			writeError(w, r, http.StatusNotFound, "account_not_found")
			return
		}

		writeJSON(w, r, http.StatusOK, newAccountResponse(snap))
	}
}

func newAccountResponse(snap record.Snapshot) accountResponse {
	return accountResponse{
		Client:    snap.Client,
		Available: money.Format(snap.Available),
		Held:      money.Format(snap.Held),
		Total:     money.Format(snap.Total),
		Locked:    snap.Locked,
	}
}
