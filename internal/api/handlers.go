package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agentethos/ethos/internal/httpx"
)

type registerRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// handleRegister creates a new agent. The API key appears in this response
// and nowhere else, ever.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}

	agent, apiKey, err := s.eng.Register(r.Context(), req.Name, req.Description)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"agent":   agent,
		"api_key": apiKey,
	})
}

// handleMe returns the authenticated agent's own profile.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"agent":   currentAgent(r),
	})
}

// handleProfile returns a named agent's public profile with its recent
// received vouches.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	agent, vouches, err := s.eng.Profile(r.Context(), name)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"agent":          agent,
		"recent_vouches": vouches,
	})
}

type vouchRequest struct {
	ToName     string `json:"to_name"`
	Score      int    `json:"score"`
	Note       string `json:"note"`
	ReceiptURL string `json:"receipt_url"`
}

// handleSubmitVouch creates or replaces the caller's vouch for the target.
func (s *Server) handleSubmitVouch(w http.ResponseWriter, r *http.Request) {
	var req vouchRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}

	view, err := s.eng.SubmitVouch(r.Context(), currentAgent(r), req.ToName, req.Score, req.Note, req.ReceiptURL)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"vouch":   view,
	})
}

// handleListVouches lists vouches received by the target agent.
func (s *Server) handleListVouches(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	limit := queryInt(r, "limit")

	vouches, err := s.eng.ReceivedVouches(r.Context(), target, limit)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"vouches": vouches,
	})
}

type flagRequest struct {
	Reason string `json:"reason"`
}

// handleFlagVouch records a moderation flag against a vouch.
func (s *Server) handleFlagVouch(w http.ResponseWriter, r *http.Request) {
	vouchID, err := strconv.ParseInt(chi.URLParam(r, "vouch_id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "VALIDATION", "vouch_id must be an integer")
		return
	}

	var req flagRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}

	flag, err := s.eng.FlagVouch(r.Context(), currentAgent(r), vouchID, req.Reason)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"flag":    flag,
	})
}

// handleLeaderboard returns agents ranked by reputation.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	agents, err := s.eng.Leaderboard(r.Context(), queryInt(r, "limit"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"leaderboard": agents,
	})
}

// queryInt parses an integer query parameter, returning 0 when absent or
// malformed (handlers treat 0 as "use the default").
func queryInt(r *http.Request, key string) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
