package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/db"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/handlers"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/hub"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/session"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/testutil"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// MockStore implements db.RecordStore in memory
type MockStore struct {
	mu          sync.Mutex
	records     map[int64]*models.BetRecord
	nextID      int64
	shouldError bool
	lastFilters models.RecordFilters
}

func NewMockStore() *MockStore {
	return &MockStore{records: make(map[int64]*models.BetRecord)}
}

func (m *MockStore) Ping(ctx context.Context) error {
	if m.shouldError {
		return context.DeadlineExceeded
	}
	return nil
}

func (m *MockStore) CreateRecord(ctx context.Context, in models.BetRecordInput) (*models.BetRecord, error) {
	if m.shouldError {
		return nil, context.DeadlineExceeded
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	record := &models.BetRecord{
		ID:              m.nextID,
		PurchasedAt:     in.PurchasedAt,
		Track:           in.Track,
		RaceNumber:      in.RaceNumber,
		BetType:         in.BetType,
		TotalInvestment: in.TotalInvestment,
		ReturnAmount:    in.ReturnAmount,
		TicketSerial:    in.TicketSerial,
		CreatedAt:       time.Now(),
	}
	m.records[record.ID] = record
	return record, nil
}

func (m *MockStore) GetRecord(ctx context.Context, id int64) (*models.BetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, db.ErrRecordNotFound
	}
	return record, nil
}

func (m *MockStore) ListRecords(ctx context.Context, filters models.RecordFilters) ([]*models.BetRecord, error) {
	if m.shouldError {
		return nil, context.DeadlineExceeded
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilters = filters
	out := []*models.BetRecord{}
	for _, r := range m.records {
		if filters.Track != nil && r.Track != *filters.Track {
			continue
		}
		if filters.Since != nil && r.PurchasedAt.Before(*filters.Since) {
			continue
		}
		if filters.Until != nil && !r.PurchasedAt.Before(*filters.Until) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MockStore) DeleteRecord(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return db.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *MockStore) Summary(ctx context.Context, period string, filters models.RecordFilters) (*models.RecordSummary, error) {
	list, err := m.ListRecords(ctx, filters)
	if err != nil {
		return nil, err
	}
	summary := &models.RecordSummary{Period: period, Count: len(list)}
	for _, r := range list {
		summary.TotalInvestment += r.TotalInvestment
		summary.TotalReturn += r.ReturnAmount
	}
	summary.Derive()
	return summary, nil
}

func newServer(t *testing.T, store db.RecordStore) http.Handler {
	t.Helper()
	h := hub.NewHub()
	m := session.NewManager(session.WithSink(h))
	return handlers.NewRouter(handlers.NewHandler(context.Background(), m, h, store), []string{"*"})
}

func do(t *testing.T, srv http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

func winTicket(serial string) string {
	h := testutil.DefaultHeader(models.BuyMethodNormal).WithSerial(serial)
	return testutil.MockNormalCode(h, testutil.MockNormalEntry(models.BetTypeWin, 3, 0, 0, false, 1000))
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		store  *MockStore
		code   int
		status string
	}{
		{name: "healthy", store: NewMockStore(), code: http.StatusOK, status: "healthy"},
		{name: "database down", store: &MockStore{shouldError: true}, code: http.StatusServiceUnavailable, status: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newServer(t, tt.store), "GET", "/health", nil)
			if w.Code != tt.code {
				t.Errorf("Expected status %d, got %d", tt.code, w.Code)
			}
			if resp := decodeMap(t, w); resp["status"] != tt.status {
				t.Errorf("Expected status '%s', got %v", tt.status, resp["status"])
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	w := do(t, newServer(t, nil), "GET", "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	resp := decodeMap(t, w)
	for _, section := range []string{"hub", "sessions"} {
		if _, ok := resp[section]; !ok {
			t.Errorf("Expected metrics section %s", section)
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv := newServer(t, nil)

	w := do(t, srv, "POST", "/api/v1/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}
	id, _ := decodeMap(t, w)["id"].(string)
	if id == "" {
		t.Fatal("Expected session id")
	}
	base := "/api/v1/sessions/" + id

	// accepted
	w = do(t, srv, "POST", base+"/scan", map[string]string{"data": winTicket("000001")})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	resp := decodeMap(t, w)
	if resp["accepted"] != true || resp["reason"] != string(models.ScanAccepted) {
		t.Fatalf("Expected acceptance, got %v", resp)
	}
	draft, _ := resp["draft"].(map[string]interface{})
	if draft["total_investment"] != float64(1000) || draft["track"] != "tokyo" {
		t.Errorf("Unexpected draft %v", draft)
	}

	// immediately afterwards the window is closed
	w = do(t, srv, "POST", base+"/scan", map[string]string{"data": winTicket("000002")})
	if resp := decodeMap(t, w); resp["reason"] != string(models.ScanDebounced) {
		t.Errorf("Expected debounced, got %v", resp["reason"])
	}

	// reset reopens it, the serial set survives
	if w = do(t, srv, "POST", base+"/reset", nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200 on reset, got %d", w.Code)
	}
	w = do(t, srv, "POST", base+"/scan", map[string]string{"data": winTicket("000001")})
	if resp := decodeMap(t, w); resp["reason"] != string(models.ScanDuplicate) {
		t.Errorf("Expected duplicate, got %v", resp["reason"])
	}

	// noise never reaches the decoder
	w = do(t, srv, "POST", base+"/scan", map[string]string{"data": "https://example.com"})
	if resp := decodeMap(t, w); resp["reason"] != string(models.ScanNotTicketCode) {
		t.Errorf("Expected not_ticket_code, got %v", resp["reason"])
	}

	w = do(t, srv, "GET", base, nil)
	stats, _ := decodeMap(t, w)["stats"].(map[string]interface{})
	if stats["frames"] != float64(4) || stats["accepted"] != float64(1) {
		t.Errorf("Unexpected stats %v", stats)
	}

	if w = do(t, srv, "DELETE", base, nil); w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if w = do(t, srv, "GET", base, nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after end, got %d", w.Code)
	}
}

func TestSessionErrorState(t *testing.T) {
	srv := newServer(t, nil)
	id, _ := decodeMap(t, do(t, srv, "POST", "/api/v1/sessions", nil))["id"].(string)
	base := "/api/v1/sessions/" + id

	h := testutil.DefaultHeader(models.BuyMethodNormal)
	h.Race = 13
	bad := testutil.MockNormalCode(h, testutil.MockNormalEntry(models.BetTypeWin, 3, 0, 0, false, 100))

	resp := decodeMap(t, do(t, srv, "POST", base+"/scan", map[string]string{"data": bad}))
	if resp["reason"] != string(models.ScanIncomplete) || resp["message"] != models.IncompleteMessage {
		t.Fatalf("Expected incomplete with generic message, got %v", resp)
	}

	if state := decodeMap(t, do(t, srv, "GET", base, nil)); state["error"] == nil {
		t.Error("Expected session error state")
	}

	state := decodeMap(t, do(t, srv, "POST", base+"/clear-error", nil))
	if _, ok := state["error"]; ok {
		t.Errorf("Expected error cleared, got %v", state["error"])
	}
}

func TestSession_NotFound(t *testing.T) {
	srv := newServer(t, nil)
	paths := []struct{ method, path string }{
		{"GET", "/api/v1/sessions/missing"},
		{"POST", "/api/v1/sessions/missing/scan"},
		{"POST", "/api/v1/sessions/missing/reset"},
		{"POST", "/api/v1/sessions/missing/clear-error"},
		{"DELETE", "/api/v1/sessions/missing"},
	}
	for _, p := range paths {
		w := do(t, srv, p.method, p.path, map[string]string{"data": winTicket("000001")})
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected status 404, got %d", p.method, p.path, w.Code)
		}
	}
}

func TestDecode(t *testing.T) {
	srv := newServer(t, nil)
	raceless := testutil.DefaultHeader(models.BuyMethodNormal)
	raceless.Race = 0

	tests := []struct {
		name  string
		data  string
		code  int
		valid bool
	}{
		{name: "valid normal ticket", data: winTicket("000001"), code: http.StatusOK, valid: true},
		{name: "missing race", data: testutil.MockNormalCode(raceless, testutil.MockNormalEntry(models.BetTypeWin, 1, 0, 0, false, 100)), code: http.StatusOK, valid: false},
		{name: "non numeric", data: "12ab", code: http.StatusUnprocessableEntity},
		{name: "too short", data: strings.Repeat("1", 20), code: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, "POST", "/api/v1/decode", map[string]string{"data": tt.data})
			if w.Code != tt.code {
				t.Fatalf("Expected status %d, got %d", tt.code, w.Code)
			}
			if tt.code != http.StatusOK {
				return
			}
			resp := decodeMap(t, w)
			if resp["valid"] != tt.valid {
				t.Errorf("Expected valid=%v, got %v", tt.valid, resp)
			}
			if _, ok := resp["draft"]; ok != tt.valid {
				t.Errorf("Expected draft only for valid tickets, got %v", resp["draft"])
			}
		})
	}
}

func TestRecords(t *testing.T) {
	store := NewMockStore()
	srv := newServer(t, store)

	// invalid input
	w := do(t, srv, "POST", "/api/v1/records", map[string]interface{}{"track": "tokyo", "race_number": 13, "bet_type": "win"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad race, got %d", w.Code)
	}

	in := testutil.MockBetRecordInput(models.TrackTokyo, 11, models.BetTypeTrio, 1200, 3000)
	in.PurchasedAt = time.Now()
	w = do(t, srv, "POST", "/api/v1/records", in)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}
	created := decodeMap(t, w)
	if created["bet_type"] != "trio" || created["id"] != float64(1) {
		t.Errorf("Unexpected record %v", created)
	}

	other := testutil.MockBetRecordInput(models.TrackKyoto, 1, models.BetTypeWin, 800, 0)
	other.PurchasedAt = time.Now()
	do(t, srv, "POST", "/api/v1/records", other)

	w = do(t, srv, "GET", "/api/v1/records?track=tokyo", nil)
	if resp := decodeMap(t, w); resp["count"] != float64(1) {
		t.Errorf("Expected 1 tokyo record, got %v", resp["count"])
	}
	if w = do(t, srv, "GET", "/api/v1/records?track=atlantis", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown track, got %d", w.Code)
	}

	w = do(t, srv, "GET", "/api/v1/records/summary?period=today", nil)
	summary := decodeMap(t, w)
	if summary["total_investment"] != float64(2000) || summary["total_return"] != float64(3000) {
		t.Errorf("Unexpected summary %v", summary)
	}
	if summary["recovery_rate_pct"] != float64(150) || summary["profit"] != float64(1000) {
		t.Errorf("Unexpected derived figures %v", summary)
	}
	if w = do(t, srv, "GET", "/api/v1/records/summary?period=week", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown period, got %d", w.Code)
	}

	if w = do(t, srv, "GET", "/api/v1/records/1", nil); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w = do(t, srv, "GET", "/api/v1/records/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad id, got %d", w.Code)
	}
	if w = do(t, srv, "DELETE", "/api/v1/records/1", nil); w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if w = do(t, srv, "GET", "/api/v1/records/1", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", w.Code)
	}
}

func TestRecords_StoreUnavailable(t *testing.T) {
	srv := newServer(t, nil)
	w := do(t, srv, "GET", "/api/v1/records", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error: %v", err)
	}
	if resp.Code != http.StatusServiceUnavailable || resp.Message == "" {
		t.Errorf("Unexpected error envelope %+v", resp)
	}
}

func TestRecords_StoreFailure(t *testing.T) {
	store := &MockStore{records: map[int64]*models.BetRecord{}, shouldError: true}
	srv := newServer(t, store)

	in := testutil.MockBetRecordInput(models.TrackTokyo, 11, models.BetTypeWin, 100, 0)
	w := do(t, srv, "POST", "/api/v1/records", in)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestRecords_ListPagingIsClamped(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 50, 0},
		{"negative limit", "?limit=-5", 1, 0},
		{"zero limit", "?limit=0", 1, 0},
		{"over cap", "?limit=10000", 500, 0},
		{"negative offset", "?limit=20&offset=-3", 20, 0},
		{"non-numeric limit", "?limit=ten", 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMockStore()
			w := do(t, newServer(t, store), "GET", "/api/v1/records"+tt.query, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if store.lastFilters.Limit != tt.wantLimit || store.lastFilters.Offset != tt.wantOffset {
				t.Errorf("Expected limit %d offset %d, got %d and %d",
					tt.wantLimit, tt.wantOffset, store.lastFilters.Limit, store.lastFilters.Offset)
			}
		})
	}
}
