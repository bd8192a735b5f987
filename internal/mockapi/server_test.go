// ABOUTME: Tests for the in-memory REST collection server
// ABOUTME: Exercises each route over httptest and the store's id/timestamp rules

package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/markalston/dragon-catalog/internal/models"
)

var fixedClock = func() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func newTestServer(t *testing.T, basePath string) (*httptest.Server, *Store) {
	t.Helper()
	store := NewStore(WithClock(fixedClock))
	server := httptest.NewServer(NewServer(store, basePath).Handler())
	t.Cleanup(server.Close)
	return server, store
}

func TestStore_IDsNeverReused(t *testing.T) {
	s := NewStore(WithClock(fixedClock))
	a := s.Create(models.RecordInput{Name: "Drogon", Type: "Fire"})
	if a.ID != "1" || a.CreatedAt != "2024-01-01T00:00:00Z" {
		t.Fatalf("unexpected record %+v", a)
	}
	s.Delete(a.ID)
	b := s.Create(models.RecordInput{Name: "Rhaegal", Type: "Green"})
	if b.ID != "2" {
		t.Errorf("expected id 2 after deletion, got %s", b.ID)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 record, got %d", s.Len())
	}
}

func TestStore_ListKeepsCreationOrder(t *testing.T) {
	s := NewStore()
	s.Seed(DefaultSeed)
	s.Delete("2")

	list := s.List()
	if len(list) != len(DefaultSeed)-1 {
		t.Fatalf("expected %d records, got %d", len(DefaultSeed)-1, len(list))
	}
	if list[0].Name != "Drogon" || list[1].Name != "Vhagar" {
		t.Errorf("unexpected order %v", list)
	}
}

func TestServer_CreateAndGet(t *testing.T) {
	server, _ := newTestServer(t, DefaultBasePath)

	body := bytes.NewBufferString(`{"name":"Drogon","type":"Fire","id":"999","createdAt":"1999-01-01T00:00:00Z"}`)
	resp, err := http.Post(server.URL+DefaultBasePath, "application/json", body)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var created models.Record
	json.NewDecoder(resp.Body).Decode(&created)
	if created.ID != "1" || created.CreatedAt != "2024-01-01T00:00:00Z" {
		t.Errorf("expected server-assigned id/createdAt, got %+v", created)
	}

	resp2, err := http.Get(server.URL + DefaultBasePath + "/1")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp2.Body.Close()
	var got models.Record
	json.NewDecoder(resp2.Body).Decode(&got)
	if got != created {
		t.Errorf("expected %+v, got %+v", created, got)
	}
}

func TestServer_UpdateMergesFields(t *testing.T) {
	server, store := newTestServer(t, DefaultBasePath)
	store.Create(models.RecordInput{Name: "Viserion", Type: "Gold"})

	req, _ := http.NewRequest(http.MethodPut, server.URL+DefaultBasePath+"/1", bytes.NewBufferString(`{"type":"Ice"}`))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT failed: %v", err)
	}
	defer resp.Body.Close()

	var updated models.Record
	json.NewDecoder(resp.Body).Decode(&updated)
	if updated.Name != "Viserion" || updated.Type != "Ice" {
		t.Errorf("unexpected record %+v", updated)
	}
}

func TestServer_NotFound(t *testing.T) {
	server, _ := newTestServer(t, DefaultBasePath)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			req, _ := http.NewRequest(method, server.URL+DefaultBasePath+"/42", bytes.NewBufferString(`{"name":"x"}`))
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("expected 404, got %d", resp.StatusCode)
			}
		})
	}
}

func TestServer_DeleteEchoesRecord(t *testing.T) {
	server, store := newTestServer(t, DefaultBasePath)
	store.Create(models.RecordInput{Name: "Meleys", Type: "Red Queen"})

	req, _ := http.NewRequest(http.MethodDelete, server.URL+DefaultBasePath+"/1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if store.Len() != 0 {
		t.Errorf("expected store to be empty")
	}
}

func TestServer_InvalidBody(t *testing.T) {
	server, _ := newTestServer(t, DefaultBasePath)

	resp, err := http.Post(server.URL+DefaultBasePath, "application/json", bytes.NewBufferString("{oops"))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestServer_RootBasePath(t *testing.T) {
	server, store := newTestServer(t, "/")
	store.Seed(DefaultSeed)

	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	var list []models.Record
	json.NewDecoder(resp.Body).Decode(&list)
	if len(list) != len(DefaultSeed) {
		t.Errorf("expected %d records, got %d", len(DefaultSeed), len(list))
	}

	health, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from /healthz, got %d", health.StatusCode)
	}
}

func TestNormalizeBasePath(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"/":               "",
		"api/v1/dragon":   "/api/v1/dragon",
		"/api/v1/dragon/": "/api/v1/dragon",
	}
	for in, want := range tests {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}
