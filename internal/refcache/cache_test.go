package refcache_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"tapegen/internal/appsheet"
	"tapegen/internal/logging"
	"tapegen/internal/refcache"
	"tapegen/internal/testsupport"
)

func newCache(t *testing.T) (*refcache.Cache, *testsupport.FakeStore) {
	t.Helper()
	store := testsupport.NewFakeStore(t)
	return refcache.New(store.Client(), logging.NewNop()), store
}

func TestTableFetchesOncePerName(t *testing.T) {
	cache, store := newCache(t)
	store.Seed("Suppliers", appsheet.Row{"Row ID": "xyz", "Name": "Acme"})
	ctx := context.Background()

	first := cache.Table(ctx, "Suppliers")
	second := cache.Table(ctx, "Suppliers")
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("unexpected rows: %v / %v", first, second)
	}
	if store.Finds("Suppliers") != 1 {
		t.Fatalf("expected one remote fetch, got %d", store.Finds("Suppliers"))
	}

	cache.Table(ctx, "Empty")
	cache.Table(ctx, "Empty")
	if store.Finds("Empty") != 1 {
		t.Fatalf("expected empty table to be cached, got %d fetches", store.Finds("Empty"))
	}
	if cache.Fetches() != 2 {
		t.Fatalf("expected 2 fetches total, got %d", cache.Fetches())
	}
}

func TestTableFailureIsNotCached(t *testing.T) {
	cache, store := newCache(t)
	store.Seed("Suppliers", appsheet.Row{"Row ID": "xyz", "Name": "Acme"})
	store.Fail("Suppliers", http.StatusServiceUnavailable)
	ctx := context.Background()

	if rows := cache.Table(ctx, "Suppliers"); len(rows) != 0 {
		t.Fatalf("expected empty rows on failure, got %v", rows)
	}

	store.Recover("Suppliers")
	if rows := cache.Table(ctx, "Suppliers"); len(rows) != 1 {
		t.Fatalf("expected retry to succeed, got %v", rows)
	}
	if store.Finds("Suppliers") != 2 {
		t.Fatalf("expected 2 fetches, got %d", store.Finds("Suppliers"))
	}
}

func TestTableEmptyBodyDegrades(t *testing.T) {
	cache, store := newCache(t)
	store.ReturnEmptyBody("Items")
	if rows := cache.Table(context.Background(), "Items"); len(rows) != 0 {
		t.Fatalf("expected no rows, got %v", rows)
	}
}

func TestLoadTableReportsFailure(t *testing.T) {
	cache, store := newCache(t)
	ctx := context.Background()
	store.ReturnEmptyBody("Items")
	if _, err := cache.LoadTable(ctx, "Items"); !errors.Is(err, appsheet.ErrEmptyBody) {
		t.Fatalf("expected empty body error, got %v", err)
	}

	rows, err := cache.LoadTable(ctx, "Parts")
	if err != nil {
		t.Fatalf("LoadTable returned error: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Fatalf("expected empty non-nil rows, got %v", rows)
	}
	if _, err := cache.LoadTable(ctx, "Parts"); err != nil || store.Finds("Parts") != 1 {
		t.Fatalf("expected cached read, err=%v finds=%d", err, store.Finds("Parts"))
	}
}

func TestItemReturnsFirstMatch(t *testing.T) {
	cache, store := newCache(t)
	store.Seed("Suppliers",
		appsheet.Row{"Row ID": "a", "Name": "Other"},
		appsheet.Row{"Row ID": "b", "Name": "Acme"},
		appsheet.Row{"Row ID": "c", "Name": "Acme"},
	)
	row, ok := cache.Item(context.Background(), "Suppliers", func(r appsheet.Row) bool { return r.Equals("Name", "Acme") })
	if !ok || row.RowID() != "b" {
		t.Fatalf("expected row b, got %v (%v)", row, ok)
	}
	if _, ok := cache.Item(context.Background(), "Suppliers", func(r appsheet.Row) bool { return r.Equals("Name", "None") }); ok {
		t.Fatal("expected no match")
	}
}

func TestComponentCodesJoin(t *testing.T) {
	cache, store := newCache(t)
	store.Seed(refcache.ComponentConfigurationTable,
		appsheet.Row{"Row ID": "c1", "Name": "Resistor"},
		appsheet.Row{"Row ID": "c2", "Name": "Capacitor"},
	)
	store.Seed(refcache.ComponentCodesTable,
		appsheet.Row{"Row ID": "k1", "Configuration": "c1", "Code": "R1"},
		appsheet.Row{"Row ID": "k2", "Configuration": "c9", "Code": "X"},
	)
	ctx := context.Background()

	codes := cache.ComponentCodes(ctx)
	if codes["Resistor"] != "R1" {
		t.Fatalf("expected Resistor -> R1, got %v", codes)
	}
	if _, ok := codes["Capacitor"]; ok {
		t.Fatalf("category without code should be omitted: %v", codes)
	}
	if len(codes) != 1 {
		t.Fatalf("unexpected mapping %v", codes)
	}

	cache.ComponentCodes(ctx)
	if store.Finds(refcache.ComponentCodesTable) != 1 || store.Finds(refcache.ComponentConfigurationTable) != 1 {
		t.Fatal("expected component tables fetched once")
	}
}

func TestComponentCodesMemoizedWhenEmpty(t *testing.T) {
	cache, store := newCache(t)
	store.Fail(refcache.ComponentCodesTable, http.StatusInternalServerError)
	ctx := context.Background()

	if codes := cache.ComponentCodes(ctx); len(codes) != 0 {
		t.Fatalf("expected empty mapping, got %v", codes)
	}
	store.Recover(refcache.ComponentCodesTable)
	cache.ComponentCodes(ctx)
	if store.Finds(refcache.ComponentCodesTable) != 1 {
		t.Fatalf("expected mapping to stay memoized, got %d fetches", store.Finds(refcache.ComponentCodesTable))
	}
}

func TestAddEntries(t *testing.T) {
	cache, store := newCache(t)
	ctx := context.Background()
	if !cache.AddEntries(ctx, "Items", []appsheet.Row{{"BarCode": "$R1$A"}}) {
		t.Fatal("expected AddEntries to succeed")
	}
	if len(store.Rows("Items")) != 1 {
		t.Fatalf("expected one stored row, got %v", store.Rows("Items"))
	}
	store.Fail("Items", http.StatusBadRequest)
	if cache.AddEntries(ctx, "Items", []appsheet.Row{{"BarCode": "$R1$B"}}) {
		t.Fatal("expected AddEntries to report failure")
	}
}
