package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentethos/ethos/internal/config"
	"github.com/agentethos/ethos/internal/engine"
	"github.com/agentethos/ethos/internal/store"
)

func newTestServer(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	st, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := config.Default()
	eng := engine.New(st, engine.Limits{MaxLeaderboard: cfg.LeaderboardLimit})
	return New(eng, cfg).Handler(), st
}

// do sends a JSON request and decodes the JSON response body into a map.
func do(t *testing.T, h http.Handler, method, path, apiKey string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), "body: %s", rec.Body.String())
	}
	return rec.Code, payload
}

// registerAgent registers via the HTTP API and returns the issued key.
func registerAgent(t *testing.T, h http.Handler, name string) string {
	t.Helper()
	status, payload := do(t, h, http.MethodPost, "/api/v1/agents/register", "", map[string]any{
		"name": name,
	})
	require.Equal(t, http.StatusCreated, status, "register %s: %v", name, payload)
	key, ok := payload["api_key"].(string)
	require.True(t, ok, "api_key missing from %v", payload)
	return key
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)
	status, payload := do(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", payload["status"])
}

func TestRegister_ReturnsKeyOnce(t *testing.T) {
	h, _ := newTestServer(t)

	status, payload := do(t, h, http.MethodPost, "/api/v1/agents/register", "", map[string]any{
		"name":        "alpha",
		"description": "test agent",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, payload["success"])

	agent := payload["agent"].(map[string]any)
	assert.Equal(t, "alpha", agent["name"])
	assert.EqualValues(t, 0, agent["reputation"])
	// The hash never leaves the server.
	assert.NotContains(t, agent, "api_key_hash")
}

func TestRegister_DuplicateNameCaseInsensitive(t *testing.T) {
	h, _ := newTestServer(t)
	registerAgent(t, h, "Agent")

	status, payload := do(t, h, http.MethodPost, "/api/v1/agents/register", "", map[string]any{
		"name": "agent",
	})
	assert.Equal(t, http.StatusConflict, status)
	errObj := payload["error"].(map[string]any)
	assert.Equal(t, "CONFLICT", errObj["code"])
	assert.Contains(t, payload, "request_id")
}

func TestMe_RequiresAuth(t *testing.T) {
	h, _ := newTestServer(t)
	key := registerAgent(t, h, "alpha")

	status, payload := do(t, h, http.MethodGet, "/api/v1/agents/me", key, nil)
	require.Equal(t, http.StatusOK, status)
	agent := payload["agent"].(map[string]any)
	assert.Equal(t, "alpha", agent["name"])

	// Missing, malformed, and unknown credentials all get 401.
	status, _ = do(t, h, http.MethodGet, "/api/v1/agents/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, h, http.MethodGet, "/api/v1/agents/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = do(t, h, http.MethodGet, "/api/v1/agents/me", "ethos_sk_"+fmt.Sprintf("%064d", 0), nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestVouchFlow(t *testing.T) {
	h, _ := newTestServer(t)
	keyA := registerAgent(t, h, "A")
	registerAgent(t, h, "B")

	// A vouches for B.
	status, payload := do(t, h, http.MethodPost, "/api/v1/vouches", keyA, map[string]any{
		"to_name": "B",
		"score":   5,
		"note":    "x",
	})
	require.Equal(t, http.StatusCreated, status, "%v", payload)
	vouch := payload["vouch"].(map[string]any)
	assert.EqualValues(t, 5, vouch["score"])
	assert.Equal(t, "A", vouch["from_agent_name"])
	assert.Equal(t, "B", vouch["to_agent_name"])

	// Received vouches for B show it.
	status, payload = do(t, h, http.MethodGet, "/api/v1/vouches?target=b", "", nil)
	require.Equal(t, http.StatusOK, status)
	vouches := payload["vouches"].([]any)
	require.Len(t, vouches, 1)
	first := vouches[0].(map[string]any)
	assert.EqualValues(t, 5, first["score"])
	assert.Equal(t, "A", first["from_agent_name"])

	// Leaderboard: B with 5, then A with 0.
	status, payload = do(t, h, http.MethodGet, "/api/v1/leaderboard?limit=50", "", nil)
	require.Equal(t, http.StatusOK, status)
	board := payload["leaderboard"].([]any)
	require.Len(t, board, 2)
	top := board[0].(map[string]any)
	assert.Equal(t, "B", top["name"])
	assert.EqualValues(t, 5, top["reputation"])
	second := board[1].(map[string]any)
	assert.Equal(t, "A", second["name"])
	assert.EqualValues(t, 0, second["reputation"])
}

func TestVouch_ErrorMapping(t *testing.T) {
	h, _ := newTestServer(t)
	keyA := registerAgent(t, h, "A")
	registerAgent(t, h, "B")

	// Self-vouch -> 400 with the distinct code.
	status, payload := do(t, h, http.MethodPost, "/api/v1/vouches", keyA, map[string]any{
		"to_name": "a", "score": 3,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "SELF_VOUCH", payload["error"].(map[string]any)["code"])

	// Unknown target -> 404.
	status, payload = do(t, h, http.MethodPost, "/api/v1/vouches", keyA, map[string]any{
		"to_name": "ghost", "score": 3,
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", payload["error"].(map[string]any)["code"])

	// Out-of-range score -> 400.
	status, payload = do(t, h, http.MethodPost, "/api/v1/vouches", keyA, map[string]any{
		"to_name": "B", "score": 6,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", payload["error"].(map[string]any)["code"])

	// Unauthenticated vouch -> 401.
	status, _ = do(t, h, http.MethodPost, "/api/v1/vouches", "", map[string]any{
		"to_name": "B", "score": 1,
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestFlagFlow(t *testing.T) {
	h, _ := newTestServer(t)
	keyA := registerAgent(t, h, "A")
	registerAgent(t, h, "B")
	keyC := registerAgent(t, h, "C")

	status, payload := do(t, h, http.MethodPost, "/api/v1/vouches", keyA, map[string]any{
		"to_name": "B", "score": 5,
	})
	require.Equal(t, http.StatusCreated, status)
	vouchID := int64(payload["vouch"].(map[string]any)["id"].(float64))

	flagPath := fmt.Sprintf("/api/v1/vouches/%d/flag", vouchID)

	// C flags once: created.
	status, payload = do(t, h, http.MethodPost, flagPath, keyC, map[string]any{"reason": "fishy"})
	require.Equal(t, http.StatusCreated, status, "%v", payload)
	flag := payload["flag"].(map[string]any)
	assert.EqualValues(t, vouchID, flag["vouch_id"])

	// C flags again: conflict.
	status, payload = do(t, h, http.MethodPost, flagPath, keyC, map[string]any{"reason": "fishy again"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", payload["error"].(map[string]any)["code"])

	// The vouch author may flag their own vouch; count reaches 2.
	status, _ = do(t, h, http.MethodPost, flagPath, keyA, map[string]any{"reason": "regret"})
	require.Equal(t, http.StatusCreated, status)

	status, payload = do(t, h, http.MethodGet, "/api/v1/vouches?target=B", "", nil)
	require.Equal(t, http.StatusOK, status)
	first := payload["vouches"].([]any)[0].(map[string]any)
	assert.EqualValues(t, 2, first["flags_count"])

	// Unknown vouch id -> 404; non-integer id -> 400.
	status, _ = do(t, h, http.MethodPost, "/api/v1/vouches/9999/flag", keyC, map[string]any{"reason": "x"})
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, h, http.MethodPost, "/api/v1/vouches/abc/flag", keyC, map[string]any{"reason": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProfile(t *testing.T) {
	h, _ := newTestServer(t)
	keyA := registerAgent(t, h, "A")
	registerAgent(t, h, "B")

	status, _ := do(t, h, http.MethodPost, "/api/v1/vouches", keyA, map[string]any{
		"to_name": "B", "score": 4, "note": "solid",
	})
	require.Equal(t, http.StatusCreated, status)

	status, payload := do(t, h, http.MethodGet, "/api/v1/agents/profile?name=b", "", nil)
	require.Equal(t, http.StatusOK, status)
	agent := payload["agent"].(map[string]any)
	assert.Equal(t, "B", agent["name"])
	assert.EqualValues(t, 4, agent["reputation"])
	recent := payload["recent_vouches"].([]any)
	require.Len(t, recent, 1)

	status, _ = do(t, h, http.MethodGet, "/api/v1/agents/profile?name=ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/leaderboard", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
