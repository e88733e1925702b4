// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/blinklabs-io/linkboard/ledger"
	"github.com/blinklabs-io/linkboard/program"
	"github.com/blinklabs-io/linkboard/registry"
	"github.com/go-chi/chi/v5"
)

// Transactions larger than this are rejected before decoding
const maxTransactionSize = 64 * 1024

// writeJSON writes a JSON response with the given status code
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(
	w http.ResponseWriter,
	status int,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// statusForError maps a submission error to its HTTP status
func statusForError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrMissingSignature),
		errors.Is(err, ledger.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrDuplicateTransaction),
		errors.Is(err, ledger.ErrAccountInUse):
		return http.StatusConflict
	case errors.Is(err, registry.ErrCapacityExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, program.ErrUnknownOp),
		errors.Is(err, program.ErrMissingAccounts),
		errors.Is(err, program.ErrSignerRequired),
		errors.Is(err, program.ErrWritableRequired),
		errors.Is(err, program.ErrNotSystemProgram),
		errors.Is(err, program.ErrSystemAccountWrite),
		errors.Is(err, ledger.ErrInvalidNonce),
		errors.Is(err, ledger.ErrFaucetLimit):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotRegistry),
		errors.Is(err, ledger.ErrTransactionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
	})
}

// handleSubmitTransaction handles POST /api/v1/transactions. The body is the
// CBOR wire form of a signed transaction.
func (s *Server) handleSubmitTransaction(
	w http.ResponseWriter,
	r *http.Request,
) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxTransactionSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) > maxTransactionSize {
		writeError(w, http.StatusRequestEntityTooLarge, "transaction too large")
		return
	}
	tx, err := ledger.DecodeTransaction(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	receipt, err := s.node.Submit(r.Context(), tx)
	if err != nil {
		status := statusForError(err)
		if status == http.StatusUnprocessableEntity && receipt == nil {
			s.logger.Error(
				"failed to submit transaction",
				"error", err,
			)
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, ErrorResponse{
			Receipt:    receipt,
			StatusCode: status,
			Error:      http.StatusText(status),
			Message:    err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (s *Server) handleGetTransaction(
	w http.ResponseWriter,
	r *http.Request,
) {
	hash, err := ledger.ParseTransactionHash(chi.URLParam(r, "hash"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx, err := s.node.Transaction(hash)
	if err != nil {
		if errors.Is(err, ledger.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("failed to get transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to retrieve transaction")
		return
	}
	writeJSON(w, http.StatusOK, newTransactionResponse(tx))
}

// handleListTransactions handles GET /api/v1/transactions and
// GET /api/v1/accounts/{address}/transactions, newest first
func (s *Server) handleListTransactions(
	w http.ResponseWriter,
	r *http.Request,
) {
	params, err := ParsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var address registry.Identity
	if addrParam := chi.URLParam(r, "address"); addrParam != "" {
		address, err = registry.ParseIdentity(addrParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	txs, err := s.node.Transactions(address, params.Limit())
	if err != nil {
		s.logger.Error("failed to list transactions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to retrieve transactions")
		return
	}
	start, end := params.Window(len(txs))
	ret := make([]TransactionResponse, 0, end-start)
	for idx := start; idx < end; idx++ {
		ret = append(ret, newTransactionResponse(&txs[idx]))
	}
	writeJSON(w, http.StatusOK, ret)
}

func (s *Server) handleGetAccount(
	w http.ResponseWriter,
	r *http.Request,
) {
	address, err := registry.ParseIdentity(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	info, err := s.node.Account(address)
	if err != nil {
		s.logger.Error("failed to get account", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to retrieve account")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleGetRegistry(
	w http.ResponseWriter,
	r *http.Request,
) {
	address, err := registry.ParseIdentity(chi.URLParam(r, "address"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := s.node.Registry(address)
	if err != nil {
		if errors.Is(err, ledger.ErrNotRegistry) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("failed to get registry", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to retrieve registry")
		return
	}
	writeJSON(w, http.StatusOK, newRegistryResponse(address, rec))
}

func (s *Server) handleListRegistries(
	w http.ResponseWriter,
	_ *http.Request,
) {
	regs, err := s.node.Registries()
	if err != nil {
		s.logger.Error("failed to list registries", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to retrieve registries")
		return
	}
	if regs == nil {
		regs = []registry.Identity{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// handleFaucet handles POST /api/v1/faucet. It is only available in
// development mode.
func (s *Server) handleFaucet(
	w http.ResponseWriter,
	r *http.Request,
) {
	if !s.config.DevMode {
		writeError(w, http.StatusForbidden, "faucet is only available in development mode")
		return
	}
	var req FaucetRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid faucet request")
		return
	}
	if err := s.node.Airdrop(r.Context(), req.Address, req.Amount); err != nil {
		status := statusForError(err)
		if status == http.StatusUnprocessableEntity {
			s.logger.Error("failed to airdrop", "error", err)
			status = http.StatusInternalServerError
		}
		writeError(w, status, err.Error())
		return
	}
	info, err := s.node.Account(req.Address)
	if err != nil {
		s.logger.Error("failed to get account", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to retrieve account")
		return
	}
	writeJSON(w, http.StatusOK, info)
}
