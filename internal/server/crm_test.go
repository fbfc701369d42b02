package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"creator-crm/internal/database"
	"creator-crm/internal/domain"
	"creator-crm/internal/realtime"
	"creator-crm/internal/repository"
	"creator-crm/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *repository.CreatorRepository, *realtime.Reconciler) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.RunMigrations(db, zerolog.Nop()))
	t.Cleanup(func() { _ = db.Close() })

	creatorRepo := repository.NewCreatorRepository(db, zerolog.Nop())
	campaignRepo := repository.NewCampaignRepository(db, zerolog.Nop())
	reconciler := realtime.NewReconciler(realtime.NewPageStore(), zerolog.Nop())

	crm := NewCRMServer(
		service.NewCreatorService(creatorRepo, zerolog.Nop()),
		service.NewRankingService(creatorRepo, campaignRepo, zerolog.Nop()),
		nil, // sync service unused in these tests
		reconciler,
		zerolog.Nop(),
	)

	mux := http.NewServeMux()
	crm.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, creatorRepo, reconciler
}

func seed(t *testing.T, repo *repository.CreatorRepository, creators ...domain.Creator) {
	t.Helper()
	require.NoError(t, repo.UpsertBatch(context.Background(), creators))
}

func TestListCreators(t *testing.T) {
	srv, repo, _ := newTestServer(t)
	seed(t, repo,
		domain.Creator{ID: "1", Name: "A", City: "Mumbai"},
		domain.Creator{ID: "2", Name: "B", City: "Delhi"},
	)

	resp, err := http.Get(srv.URL + "/api/creators?city=Mumbai")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page pageResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "A", page.Data[0].Name)
	assert.Equal(t, 1, page.TotalPages)
}

func TestUpdateScore(t *testing.T) {
	srv, repo, _ := newTestServer(t)
	seed(t, repo, domain.Creator{ID: "c1", Name: "A"})

	put := func(id, body string) *http.Response {
		req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/creators/"+id+"/score", strings.NewReader(body))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := put("c1", `{"score": 7.5}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Out of range: rejected, stored value untouched.
	resp = put("c1", `{"score": 11}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	creator, err := repo.Get(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, creator.ManualPerformanceScore)
	assert.Equal(t, 7.5, *creator.ManualPerformanceScore)

	// null clears the override.
	resp = put("c1", `{"score": null}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	creator, err = repo.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Nil(t, creator.ManualPerformanceScore)

	resp = put("missing", `{"score": 5}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGetCreatorNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/creators/ghost")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRankings(t *testing.T) {
	srv, repo, _ := newTestServer(t)
	seed(t, repo,
		domain.Creator{ID: "1", Name: "A", EngagementRate: fptr(10)},
		domain.Creator{ID: "2", Name: "B", EngagementRate: fptr(1)},
	)

	resp, err := http.Get(srv.URL + "/api/rankings?limit=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ranked []rankedCreatorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ranked))
	require.Len(t, ranked, 1)
	assert.Equal(t, "A", ranked[0].Name)
	assert.False(t, ranked[0].IsManualScore)
}

func TestChangeEvents(t *testing.T) {
	srv, _, reconciler := newTestServer(t)

	post := func(body string) *http.Response {
		resp, err := http.Post(srv.URL+"/api/events", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		return resp
	}

	resp := post(`{"type":"INSERT","record":{"id":"r1","name":"Live","engagement_rate":"3.5%"}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	creators, total := reconciler.Store().Snapshot()
	require.Len(t, creators, 1)
	assert.Equal(t, "Live", creators[0].Name)
	assert.Equal(t, 1, total)

	resp = post(`{"type":"DELETE","id":"r1"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	creators, _ = reconciler.Store().Snapshot()
	assert.Empty(t, creators)

	resp = post(`{"type":"NOPE"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func fptr(v float64) *float64 { return &v }
