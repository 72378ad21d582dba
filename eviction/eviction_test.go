package eviction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/boundcache/types"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func entry(key string, seq uint64, mut func(e *types.Entry[string])) *types.Entry[string] {
	e := &types.Entry[string]{
		Key:            key,
		Seq:            seq,
		CreatedAt:      t0,
		LastAccessedAt: t0,
		SizeBytes:      10,
	}
	if mut != nil {
		mut(e)
	}
	return e
}

func keys(entries []*types.Entry[string]) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return out
}

func TestOrder(t *testing.T) {
	tests := []struct {
		name     string
		policy   PolicyType
		entries  []*types.Entry[string]
		expected []string
	}{
		{
			name:   "lru oldest access first",
			policy: LRU,
			entries: []*types.Entry[string]{
				entry("a", 1, func(e *types.Entry[string]) { e.LastAccessedAt = t0.Add(3 * time.Second) }),
				entry("b", 2, func(e *types.Entry[string]) { e.LastAccessedAt = t0.Add(1 * time.Second) }),
				entry("c", 3, func(e *types.Entry[string]) { e.LastAccessedAt = t0.Add(2 * time.Second) }),
			},
			expected: []string{"b", "c", "a"},
		},
		{
			name:   "lfu fewest reads first",
			policy: LFU,
			entries: []*types.Entry[string]{
				entry("a", 1, func(e *types.Entry[string]) { e.AccessCount = 5 }),
				entry("b", 2, func(e *types.Entry[string]) { e.AccessCount = 0 }),
				entry("c", 3, func(e *types.Entry[string]) { e.AccessCount = 2 }),
			},
			expected: []string{"b", "c", "a"},
		},
		{
			name:   "ttl soonest expiry first and no ttl last",
			policy: TTL,
			entries: []*types.Entry[string]{
				entry("forever", 1, nil),
				entry("late", 2, func(e *types.Entry[string]) { e.ExpiresAt = t0.Add(time.Hour) }),
				entry("soon", 3, func(e *types.Entry[string]) { e.ExpiresAt = t0.Add(time.Minute) }),
			},
			expected: []string{"soon", "late", "forever"},
		},
		{
			name:   "size largest first",
			policy: Size,
			entries: []*types.Entry[string]{
				entry("small", 1, func(e *types.Entry[string]) { e.SizeBytes = 1 }),
				entry("large", 2, func(e *types.Entry[string]) { e.SizeBytes = 100 }),
				entry("medium", 3, func(e *types.Entry[string]) { e.SizeBytes = 50 }),
			},
			expected: []string{"large", "medium", "small"},
		},
		{
			name:   "fifo insertion order",
			policy: FIFO,
			entries: []*types.Entry[string]{
				entry("third", 3, func(e *types.Entry[string]) { e.LastAccessedAt = t0.Add(-time.Hour) }),
				entry("first", 1, func(e *types.Entry[string]) { e.AccessCount = 10 }),
				entry("second", 2, nil),
			},
			expected: []string{"first", "second", "third"},
		},
		{
			name:   "ties broken by insertion order",
			policy: LRU,
			entries: []*types.Entry[string]{
				entry("k3", 3, nil),
				entry("k1", 1, nil),
				entry("k2", 2, nil),
			},
			expected: []string{"k1", "k2", "k3"},
		},
		{
			name:   "ttl ties among entries without ttl",
			policy: TTL,
			entries: []*types.Entry[string]{
				entry("y", 9, nil),
				entry("x", 4, nil),
			},
			expected: []string{"x", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewEvictionPolicy[string](tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.policy, p.Type())

			Order(p, tt.entries)
			assert.Equal(t, tt.expected, keys(tt.entries))
		})
	}
}

func TestVictims(t *testing.T) {
	p, err := NewEvictionPolicy[string](FIFO)
	require.NoError(t, err)

	build := func(sizes ...int64) []*types.Entry[string] {
		out := make([]*types.Entry[string], 0, len(sizes))
		for i, s := range sizes {
			out = append(out, entry(string(rune('a'+i)), uint64(i+1), func(e *types.Entry[string]) { e.SizeBytes = s }))
		}
		return out
	}

	t.Run("fits without eviction", func(t *testing.T) {
		entries := build(40, 40)
		assert.Empty(t, Victims(p, entries, 80, 20, 100))
	})

	t.Run("evicts until freed covers required", func(t *testing.T) {
		entries := build(10, 10, 10, 10, 10, 10, 10, 10, 10, 10)
		victims := Victims(p, entries, 100, 25, 100)
		assert.Equal(t, []string{"a", "b", "c"}, keys(victims))
	})

	t.Run("over budget table keeps evicting until the entry fits", func(t *testing.T) {
		entries := build(5, 150, 5)
		victims := Victims(p, entries, 160, 5, 100)
		assert.Equal(t, []string{"a", "b"}, keys(victims))
	})

	t.Run("oversized value takes everything", func(t *testing.T) {
		entries := build(10, 20, 30)
		victims := Victims(p, entries, 60, 500, 100)
		assert.Equal(t, []string{"a", "b", "c"}, keys(victims))
	})

	t.Run("empty table", func(t *testing.T) {
		assert.Empty(t, Victims(p, nil, 0, 500, 100))
	})
}

func TestParsePolicyType(t *testing.T) {
	for _, in := range []string{"lru", "LFU", " ttl ", "Size", "fifo"} {
		_, err := ParsePolicyType(in)
		assert.NoError(t, err, in)
	}

	_, err := ParsePolicyType("random")
	require.Error(t, err)

	_, err = NewEvictionPolicy[string]("random")
	require.Error(t, err)
}
