package storage

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	logx "astrobot/pkg/logx"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	st, err := Open(Config{Driver: "file", Path: t.TempDir()}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestFileStoreSchedulesRoundTrip(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	jobs := map[string]int64{
		"Skywatch@9#c50": 41400000,
		"Aries@9#u1":     0,
	}
	if err := st.SaveSchedules(ctx, 9, jobs); err != nil {
		t.Fatalf("SaveSchedules: %v", err)
	}
	if err := st.SaveSchedules(ctx, -100, map[string]int64{"Leo@-100#c-100": 3600000}); err != nil {
		t.Fatalf("SaveSchedules: %v", err)
	}

	all, err := st.LoadSchedules(ctx)
	if err != nil {
		t.Fatalf("LoadSchedules: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 guilds, got %d", len(all))
	}
	if !reflect.DeepEqual(all[9], jobs) {
		t.Fatalf("guild 9 mismatch: %v", all[9])
	}
	if all[-100]["Leo@-100#c-100"] != 3600000 {
		t.Fatalf("guild -100 mismatch: %v", all[-100])
	}
}

func TestFileStoreListenersRoundTrip(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.SaveListeners(ctx, 9, []int64{3, 1, 2}); err != nil {
		t.Fatalf("SaveListeners: %v", err)
	}
	all, err := st.LoadListeners(ctx)
	if err != nil {
		t.Fatalf("LoadListeners: %v", err)
	}
	// Order is listener registration order and must survive the trip.
	if !reflect.DeepEqual(all[9], []int64{3, 1, 2}) {
		t.Fatalf("listeners mismatch: %v", all[9])
	}
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	t.Parallel()
	st := openTestStore(t)
	ctx := context.Background()

	if err := st.SaveSchedules(ctx, 9, map[string]int64{"Aries@9#u1": 1000}); err != nil {
		t.Fatalf("SaveSchedules: %v", err)
	}
	if err := st.SaveSchedules(ctx, 9, map[string]int64{}); err != nil {
		t.Fatalf("SaveSchedules: %v", err)
	}

	all, err := st.LoadSchedules(ctx)
	if err != nil {
		t.Fatalf("LoadSchedules: %v", err)
	}
	if len(all[9]) != 0 {
		t.Fatalf("expected empty table after overwrite, got %v", all[9])
	}
}

func TestFileStoreSkipsBadFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	st, err := Open(Config{Path: root}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()
	ctx := context.Background()

	if err := st.SaveSchedules(ctx, 9, map[string]int64{"Aries@9#u1": 1000}); err != nil {
		t.Fatalf("SaveSchedules: %v", err)
	}

	dir := filepath.Join(root, "schedules")
	for name, content := range map[string]string{
		"notanumber.json": `{}`,
		"12.json":         `{broken`,
		".hidden.json":    `{}`,
		"readme.txt":      "ignore me",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	all, err := st.LoadSchedules(ctx)
	if err != nil {
		t.Fatalf("LoadSchedules: %v", err)
	}
	if len(all) != 1 || all[9]["Aries@9#u1"] != 1000 {
		t.Fatalf("expected only guild 9 to survive, got %v", all)
	}
}

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "none"}, logx.Nop()); err != ErrDisabled {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
