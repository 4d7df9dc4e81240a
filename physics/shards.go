package physics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/user-none/rocemu/roc"
)

// LoadShards loads one Table per path concurrently, returning them in the
// same order as paths. Concurrency here is purely a boundary-level
// convenience for reading several large table files at startup; the core
// simulation loop that consumes the result is never touched by it.
func LoadShards(paths []string, cycle bool) ([]*Table, error) {
	tables := make([]*Table, len(paths))

	g, _ := errgroup.WithContext(context.Background())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			r, err := OpenTableFile(path)
			if err != nil {
				return err
			}
			if rc, ok := r.(interface{ Close() error }); ok {
				defer rc.Close()
			}
			t, err := LoadTable(r, cycle)
			if err != nil {
				return fmt.Errorf("physics: loading shard %s: %w", path, err)
			}
			tables[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// ShardedTable is a roc.PayloadSource that spreads lookups across several
// independently loaded Tables, round-robining by eventIndex so a single
// run can draw payload data from more than one shard file.
type ShardedTable struct {
	shards []*Table
}

// NewShardedTable wraps tables for round-robin lookup.
func NewShardedTable(tables []*Table) *ShardedTable {
	return &ShardedTable{shards: tables}
}

// LookupWord routes eventIndex to shard eventIndex%len(shards), passing
// eventIndex/len(shards) through so each shard still sees a densely
// increasing sequence for its own cycle/random assignment.
func (s *ShardedTable) LookupWord(eventIndex int, link roc.LinkID, channel roc.ChannelName) roc.Word {
	if len(s.shards) == 0 {
		return 0
	}
	n := len(s.shards)
	shard := s.shards[eventIndex%n]
	return shard.LookupWord(eventIndex/n, link, channel)
}
