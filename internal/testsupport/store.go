package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"tapegen/internal/appsheet"
)

const (
	// FakeAppID is the application id served by FakeStore.
	FakeAppID = "app-test"
	// FakeAppKey is the access key FakeStore expects.
	FakeAppKey = "key-test"
)

// AddCall records one Add action received by FakeStore.
type AddCall struct {
	Table string
	Rows  []appsheet.Row
}

// FakeStore is an in-memory AppSheet API server.
type FakeStore struct {
	server *httptest.Server

	mu        sync.Mutex
	tables    map[string][]appsheet.Row
	failing   map[string]int
	rejecting map[string]int
	empty     map[string]bool
	finds     map[string]int
	adds      []AddCall
	nextRowID int
}

// NewFakeStore starts a fake AppSheet server and registers cleanup.
func NewFakeStore(t testing.TB) *FakeStore {
	t.Helper()

	store := &FakeStore{
		tables:  map[string][]appsheet.Row{},
		failing:   map[string]int{},
		rejecting: map[string]int{},
		empty:     map[string]bool{},
		finds:     map[string]int{},
	}
	store.server = httptest.NewServer(http.HandlerFunc(store.handle))
	t.Cleanup(store.server.Close)
	return store
}

// URL returns the API base URL of the fake server.
func (s *FakeStore) URL() string {
	return s.server.URL + "/api/v2"
}

// Credentials returns credentials accepted by the fake server.
func (s *FakeStore) Credentials() appsheet.Credentials {
	return appsheet.Credentials{ApplicationID: FakeAppID, ApplicationKey: FakeAppKey}
}

// Client returns an appsheet client bound to the fake server.
func (s *FakeStore) Client() *appsheet.Client {
	return appsheet.NewClient(appsheet.Config{BaseURL: s.URL(), Credentials: s.Credentials()})
}

// Seed replaces the contents of table.
func (s *FakeStore) Seed(table string, rows ...appsheet.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append([]appsheet.Row{}, rows...)
}

// SeedComponentCodes seeds the ComponentCodes and ComponentConfiguration
// tables so that each category maps to its code.
func (s *FakeStore) SeedComponentCodes(codes map[string]string) {
	var configs, entries []appsheet.Row
	i := 0
	for category, code := range codes {
		i++
		id := fmt.Sprintf("cfg-%d", i)
		configs = append(configs, appsheet.Row{"Row ID": id, "Name": category})
		entries = append(entries, appsheet.Row{"Row ID": fmt.Sprintf("code-%d", i), "Configuration": id, "Code": code})
	}
	s.Seed("ComponentConfiguration", configs...)
	s.Seed("ComponentCodes", entries...)
}

// Fail makes every action on table answer with status.
func (s *FakeStore) Fail(table string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[table] = status
}

// RejectAdds makes Add actions on table answer with status while Find keeps
// working.
func (s *FakeStore) RejectAdds(table string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejecting[table] = status
}

// Recover clears a failure injected with Fail.
func (s *FakeStore) Recover(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failing, table)
}

// ReturnEmptyBody makes Find on table answer 200 with no content.
func (s *FakeStore) ReturnEmptyBody(table string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.empty[table] = true
}

// Finds returns the number of Find actions received for table.
func (s *FakeStore) Finds(table string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finds[table]
}

// Adds returns every Add action received so far.
func (s *FakeStore) Adds() []AddCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AddCall(nil), s.adds...)
}

// Rows returns the current contents of table.
func (s *FakeStore) Rows(table string) []appsheet.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]appsheet.Row(nil), s.tables[table]...)
}

func (s *FakeStore) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Header.Get("ApplicationAccessKey") != FakeAppKey {
		http.Error(w, "bad access key", http.StatusForbidden)
		return
	}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// api/v2/apps/{id}/tables/{table}/Action
	if len(parts) != 7 || parts[2] != "apps" || parts[3] != FakeAppID || parts[4] != "tables" || parts[6] != "Action" {
		http.Error(w, "unknown path "+r.URL.Path, http.StatusNotFound)
		return
	}
	table := parts[5]

	var payload struct {
		Action     string         `json:"Action"`
		Properties map[string]any `json:"Properties"`
		Rows       []appsheet.Row `json:"Rows"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "decode body: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch payload.Action {
	case "Find":
		s.finds[table]++
	case "Add":
		s.adds = append(s.adds, AddCall{Table: table, Rows: payload.Rows})
	default:
		http.Error(w, "unknown action "+payload.Action, http.StatusBadRequest)
		return
	}
	if status, ok := s.failing[table]; ok {
		http.Error(w, "injected failure", status)
		return
	}
	if status, ok := s.rejecting[table]; ok && payload.Action == "Add" {
		http.Error(w, "injected rejection", status)
		return
	}

	switch payload.Action {
	case "Find":
		if s.empty[table] {
			w.WriteHeader(http.StatusOK)
			return
		}
		rows := s.tables[table]
		if rows == nil {
			rows = []appsheet.Row{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rows)
	case "Add":
		added := make([]appsheet.Row, 0, len(payload.Rows))
		for _, row := range payload.Rows {
			copied := appsheet.Row{}
			for k, v := range row {
				copied[k] = v
			}
			s.nextRowID++
			copied[appsheet.RowIDColumn] = fmt.Sprintf("row-%d", s.nextRowID)
			added = append(added, copied)
		}
		s.tables[table] = append(s.tables[table], added...)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"Rows": added})
	}
}
