package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"genelink/internal/dataset"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	store := NewStore(openTestDB(t))
	require.NoError(t, store.UpsertUser("ada", "hopper"))
	require.NoError(t, store.SaveDataset("tcga-lung", "Lung", testDataset()))

	auth, err := NewAuth("test-secret", time.Hour)
	require.NoError(t, err)
	return NewHandler(store, auth).Routes()
}

func login(t *testing.T, routes http.Handler, username, password string) (string, int) {
	t.Helper()
	body, err := json.Marshal(LoginRequest{Username: username, Password: password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		return "", rec.Code
	}
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token, rec.Code
}

func TestLogin(t *testing.T) {
	routes := testHandler(t)

	token, code := login(t, routes, "ada", "hopper")
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, token)

	_, code = login(t, routes, "ada", "wrong")
	require.Equal(t, http.StatusUnauthorized, code)

	_, code = login(t, routes, "", "")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestLogin_InvalidJSON(t *testing.T) {
	routes := testHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte("{nope")))
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListDatasets_RequiresToken(t *testing.T) {
	routes := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/datasets", nil)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListDatasets(t *testing.T) {
	routes := testHandler(t)
	token, _ := login(t, routes, "ada", "hopper")

	req := httptest.NewRequest(http.MethodGet, "/datasets", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListDatasetsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	require.Equal(t, "tcga-lung", resp.Datasets[0].Name)
	require.Equal(t, 2, resp.Datasets[0].SampleCount)
}

func TestGetDataset(t *testing.T) {
	routes := testHandler(t)
	token, _ := login(t, routes, "ada", "hopper")

	req := httptest.NewRequest(http.MethodGet, "/datasets/tcga-lung", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var ds dataset.Dataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ds))
	require.Len(t, ds.Mutations, 1)
	require.Len(t, ds.Samples, 2)
}

func TestGetDataset_NotFound(t *testing.T) {
	routes := testHandler(t)
	token, _ := login(t, routes, "ada", "hopper")

	req := httptest.NewRequest(http.MethodGet, "/datasets/absent", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "not_found", resp.Code)
}

func TestHealth_IsOpen(t *testing.T) {
	routes := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	routes.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_StartAndStop(t *testing.T) {
	store := NewStore(openTestDB(t))
	auth, err := NewAuth("test-secret", time.Hour)
	require.NoError(t, err)

	srv, err := NewServer(Config{Addr: "127.0.0.1:0", Store: store, Auth: auth})
	require.NoError(t, err)
	require.Greater(t, srv.Port(), 0)

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	// Probe health over the real listener.
	var resp *http.Response
	url := "http://127.0.0.1:" + strconv.Itoa(srv.Port()) + "/health"
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	require.ErrorIs(t, <-done, http.ErrServerClosed)
}
