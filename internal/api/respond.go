package api

import (
	"log/slog"
	"net/http"

	"github.com/agentethos/ethos/internal/httpx"
	"github.com/agentethos/ethos/internal/ledger"
)

// writeLedgerError maps a ledger error code to its HTTP status and writes
// the standard error envelope. Non-ledger errors are internal failures:
// logged, reported as 500 with code INTERNAL, details withheld.
func writeLedgerError(w http.ResponseWriter, err error) {
	code := ledger.CodeOf(err)
	switch code {
	case ledger.ErrCodeValidation, ledger.ErrCodeSelfVouch:
		httpx.WriteError(w, http.StatusBadRequest, string(code), err.Error())
	case ledger.ErrCodeUnauthorized:
		w.Header().Set("WWW-Authenticate", "Bearer")
		httpx.WriteError(w, http.StatusUnauthorized, string(code), err.Error())
	case ledger.ErrCodeNotFound:
		httpx.WriteError(w, http.StatusNotFound, string(code), err.Error())
	case ledger.ErrCodeConflict:
		httpx.WriteError(w, http.StatusConflict, string(code), err.Error())
	default:
		slog.Error("internal error", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
