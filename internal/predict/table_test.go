package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBuckets(t *testing.T) {
	buckets := DefaultBuckets()
	table, err := NewTable(buckets)
	require.NoError(t, err)
	require.Len(t, table.Buckets(), len(buckets))

	for i, b := range buckets {
		assert.InDelta(t, 1.0, b.probs().Sum(), sumTolerance, "bucket %d", i)
		if i == 0 {
			continue
		}
		prev := buckets[i-1]
		assert.GreaterOrEqual(t, b.HomeWin, prev.HomeWin, "home win must not fall as the difference grows (bucket %d)", i)
		assert.LessOrEqual(t, b.AwayWin, prev.AwayWin, "away win must not rise as the difference grows (bucket %d)", i)
	}
}

func TestTableLookup(t *testing.T) {
	table, err := NewTable(DefaultBuckets())
	require.NoError(t, err)

	tests := []struct {
		name string
		diff float64
		home float64
		away float64
	}{
		{"far below range", -5000, 0.04, 0.88},
		{"lower edge is inclusive", -400, 0.10, 0.76},
		{"even", 0, 0.41, 0.33},
		{"just below a bound", 149.99, 0.55, 0.23},
		{"on a bound", 150, 0.62, 0.18},
		{"far above range", 5000, 0.86, 0.06},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := table.Lookup(tt.diff)
			assert.Equal(t, tt.home, p.Home)
			assert.Equal(t, tt.away, p.Away)
			assert.InDelta(t, 1.0, p.Sum(), sumTolerance)
		})
	}
}

func TestNewTableRejectsBadBuckets(t *testing.T) {
	tests := []struct {
		name    string
		buckets func() []Bucket
		want    error
	}{
		{"empty", func() []Bucket { return nil }, ErrEmptyTable},
		{"bounded below", func() []Bucket {
			b := DefaultBuckets()
			b[0].Low = bound(-1000)
			return b
		}, ErrGap},
		{"bounded above", func() []Bucket {
			b := DefaultBuckets()
			b[len(b)-1].High = bound(1000)
			return b
		}, ErrGap},
		{"gap between buckets", func() []Bucket {
			b := DefaultBuckets()
			b[3].High = bound(-110)
			return b
		}, ErrGap},
		{"inverted bucket", func() []Bucket {
			b := DefaultBuckets()
			b[6].Low, b[6].High = bound(20), bound(-20)
			return b
		}, ErrGap},
		{"does not sum to one", func() []Bucket {
			b := DefaultBuckets()
			b[6].Draw = 0.3
			return b
		}, ErrProbabilitySum},
		{"negative probability", func() []Bucket {
			b := DefaultBuckets()
			b[6].HomeWin, b[6].Draw = -0.1, 0.77
			return b
		}, ErrProbabilitySum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(tt.buckets())
			assert.Nil(t, table)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTableIsImmutable(t *testing.T) {
	buckets := DefaultBuckets()
	table, err := NewTable(buckets)
	require.NoError(t, err)

	buckets[6].HomeWin = 0.99
	assert.Equal(t, 0.41, table.Lookup(0).Home)

	rows := table.Buckets()
	rows[6].HomeWin = 0.99
	assert.Equal(t, 0.41, table.Lookup(0).Home)
}
