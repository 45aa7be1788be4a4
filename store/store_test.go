package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"murmur/session"
)

func openTestGateway(t *testing.T) *Gateway {
	t.Helper()
	g, err := Open(filepath.Join(t.TempDir(), "murmur.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func TestLoadMissingKey(t *testing.T) {
	g := openTestGateway(t)

	value, ok, err := g.Load(context.Background(), "pinnedItems")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok || value != nil {
		t.Errorf("missing key returned ok=%v value=%v", ok, value)
	}
}

func TestSaveOverwrites(t *testing.T) {
	g := openTestGateway(t)
	ctx := context.Background()

	for _, v := range []string{"first", "second"} {
		if err := g.Save(ctx, "k", []byte(v)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	value, ok, err := g.Load(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if string(value) != "second" {
		t.Errorf("value = %q, want %q", value, "second")
	}
}

func TestPinnedItemsRoundTrip(t *testing.T) {
	g := openTestGateway(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	items := make([]session.TranscriptItem, 5)
	for i := range items {
		items[i] = session.TranscriptItem{
			ID:        int64(100 + i),
			Text:      "note " + string(rune('a'+i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}

	data, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := g.Save(ctx, "pinnedItems", data); err != nil {
		t.Fatalf("Save: %v", err)
	}

	value, ok, err := g.Load(ctx, "pinnedItems")
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	var got []session.TranscriptItem
	if err := json.Unmarshal(value, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, items) {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", got, items)
	}
}
