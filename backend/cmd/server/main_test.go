package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifegraph/backend/internal/graph"
	"lifegraph/backend/internal/history"
	"lifegraph/backend/internal/orchestrator"
	"lifegraph/backend/internal/registry"
	"lifegraph/backend/internal/triage"
	"lifegraph/backend/pkg/config"
	"lifegraph/backend/pkg/logger"
)

type stubTriage struct {
	plan *triage.ExecutionPlan
}

func (s *stubTriage) Triage(ctx context.Context, query string, turns []history.Turn) (*triage.ExecutionPlan, error) {
	return s.plan, nil
}

func newTestServer(t *testing.T, plan *triage.ExecutionPlan) (*gin.Engine, graph.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := graph.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cache := history.NewMemoryCache(10)
	t.Cleanup(func() { cache.Close() })

	cfg := &config.Config{Env: "test", Debug: false}
	orch := orchestrator.New(&stubTriage{plan: plan}, registry.New(store), store, cache)
	return newRouter(cfg, logger.Get(), orch, store, cache), store
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "ok", response["status"])
}

func TestIngest_MissingFields(t *testing.T) {
	router, _ := newTestServer(t, nil)

	w := postJSON(router, "/api/ingest", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngest_OversizedQuery(t *testing.T) {
	router, _ := newTestServer(t, nil)

	body, _ := json.Marshal(map[string]string{
		"query":           strings.Repeat("a", maxQueryLength+1),
		"conversation_id": "conv-1",
		"owner_id":        "owner-1",
	})
	w := postJSON(router, "/api/ingest", string(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngest_InvalidConversationID(t *testing.T) {
	router, _ := newTestServer(t, nil)

	w := postJSON(router, "/api/ingest", `{
		"query": "hello",
		"conversation_id": "conv 1; DROP TABLE",
		"owner_id": "owner-1"
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngest_EndToEnd(t *testing.T) {
	plan := &triage.ExecutionPlan{
		TriageSummary:     "User described their brother John",
		SuggestedResponse: "Got it.",
		TargetEntity:      &triage.TargetEntity{Alias: "John", Type: "person"},
		ComponentTasks: []triage.ComponentTask{
			{
				TaskID:        "t1",
				TargetAgent:   "relationship",
				ComponentName: "family",
				ComponentData: map[string]interface{}{"raw": "John is my brother"},
			},
		},
	}
	router, store := newTestServer(t, plan)

	w := postJSON(router, "/api/ingest", `{
		"query": "John is my brother",
		"conversation_id": "conv-1",
		"owner_id": "owner-1"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response struct {
		Status       string `json:"status"`
		ResponseText string `json:"response_text"`
		EntityID     string `json:"entity_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
	assert.NotEmpty(t, response.EntityID)
	assert.Equal(t, "Got it.", response.ResponseText)

	// The relationship task resolved the owner's own node and linked it
	me, err := store.FindOrCreateEntity(context.Background(), "owner-1", "Me", "person")
	require.NoError(t, err)
	edges, err := store.OutgoingRelationships(context.Background(), me, 0)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, graph.RelSiblingOf, edges[0].Type)

	// Entity endpoints serve what ingestion wrote
	w = httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/entities/"+response.EntityID, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/entities/"+response.EntityID+"/edges", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// The turn was recorded
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/conversations/conv-1/history", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var historyResponse struct {
		Turns []history.Turn `json:"turns"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &historyResponse))
	require.Len(t, historyResponse.Turns, 1)
	assert.Equal(t, "John is my brother", historyResponse.Turns[0].UserText)
}

func TestGetEntity_NotFound(t *testing.T) {
	router, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/entities/no-such-id", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteEntity_RemovesEntity(t *testing.T) {
	router, store := newTestServer(t, nil)

	id, err := store.FindOrCreateEntity(context.Background(), "owner-1", "John", "person")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/entities/"+id, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/entities/"+id, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListEntities_RequiresOwnerAndType(t *testing.T) {
	router, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/entities?type=person", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
