package physics

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/user-none/rocemu/roc"
)

func writeShardCSV(t *testing.T, dir, name string, link0CH0 int) string {
	t.Helper()
	var sb []byte
	sb = append(sb, []byte("link,ch\n")...)
	for l := 0; l < roc.NELinks; l++ {
		fields := strconv.Itoa(l) + "," + strconv.Itoa(link0CH0)
		for i := 1; i < 37; i++ {
			fields += ",1"
		}
		sb = append(sb, []byte(fields+"\n")...)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, sb, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestLoadShards_LoadsAllPaths(t *testing.T) {
	dir := t.TempDir()
	a := writeShardCSV(t, dir, "a.csv", 100)
	b := writeShardCSV(t, dir, "b.csv", 200)

	tables, err := LoadShards([]string{a, b}, true)
	if err != nil {
		t.Fatalf("LoadShards: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	if w := tables[0].LookupWord(0, 0, roc.Channel(0)); w != 100 {
		t.Errorf("shard a: expected 100, got %d", w)
	}
	if w := tables[1].LookupWord(0, 0, roc.Channel(0)); w != 200 {
		t.Errorf("shard b: expected 200, got %d", w)
	}
}

func TestShardedTable_RoundRobinsByEventIndex(t *testing.T) {
	dir := t.TempDir()
	a := writeShardCSV(t, dir, "a.csv", 100)
	b := writeShardCSV(t, dir, "b.csv", 200)

	tables, err := LoadShards([]string{a, b}, true)
	if err != nil {
		t.Fatalf("LoadShards: %v", err)
	}
	sharded := NewShardedTable(tables)

	if w := sharded.LookupWord(0, 0, roc.Channel(0)); w != 100 {
		t.Errorf("event 0: expected shard a's 100, got %d", w)
	}
	if w := sharded.LookupWord(1, 0, roc.Channel(0)); w != 200 {
		t.Errorf("event 1: expected shard b's 200, got %d", w)
	}
	if w := sharded.LookupWord(2, 0, roc.Channel(0)); w != 100 {
		t.Errorf("event 2: expected shard a's 100 again, got %d", w)
	}
}
