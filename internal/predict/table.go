package predict

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrEmptyTable     = errors.New("probability table is empty")
	ErrGap            = errors.New("probability buckets are not contiguous")
	ErrProbabilitySum = errors.New("bucket probabilities do not sum to 1")
)

const sumTolerance = 1e-6

// ThreeWay holds home-win / draw / away-win probabilities (0–1).
type ThreeWay struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// Sum of the three outcomes.
func (p ThreeWay) Sum() float64 { return p.Home + p.Draw + p.Away }

// Bucket covers rating differences in [Low, High). A nil Low extends to
// negative infinity and a nil High to positive infinity.
type Bucket struct {
	Low     *float64 `yaml:"low,omitempty" json:"low,omitempty"`
	High    *float64 `yaml:"high,omitempty" json:"high,omitempty"`
	HomeWin float64  `yaml:"home_win" json:"homeWin"`
	Draw    float64  `yaml:"draw" json:"draw"`
	AwayWin float64  `yaml:"away_win" json:"awayWin"`
}

func (b Bucket) probs() ThreeWay {
	return ThreeWay{Home: b.HomeWin, Draw: b.Draw, Away: b.AwayWin}
}

func (b Bucket) String() string {
	lo, hi := "-inf", "+inf"
	if b.Low != nil {
		lo = fmt.Sprintf("%g", *b.Low)
	}
	if b.High != nil {
		hi = fmt.Sprintf("%g", *b.High)
	}
	return fmt.Sprintf("[%s, %s)", lo, hi)
}

// Table maps a home-minus-away rating difference to outcome probabilities.
// It is immutable once built.
type Table struct {
	buckets []Bucket
}

// NewTable validates the buckets: ordered, contiguous, unbounded at both ends,
// non-negative and each summing to 1.
func NewTable(buckets []Bucket) (*Table, error) {
	if len(buckets) == 0 {
		return nil, ErrEmptyTable
	}
	last := len(buckets) - 1
	if buckets[0].Low != nil {
		return nil, fmt.Errorf("first bucket %s must be open below: %w", buckets[0], ErrGap)
	}
	if buckets[last].High != nil {
		return nil, fmt.Errorf("last bucket %s must be open above: %w", buckets[last], ErrGap)
	}

	for i, b := range buckets {
		if i < last && b.High == nil {
			return nil, fmt.Errorf("bucket %d %s has no upper bound: %w", i, b, ErrGap)
		}
		if i > 0 && b.Low == nil {
			return nil, fmt.Errorf("bucket %d %s has no lower bound: %w", i, b, ErrGap)
		}
		if b.Low != nil && b.High != nil && *b.Low >= *b.High {
			return nil, fmt.Errorf("bucket %d %s is empty: %w", i, b, ErrGap)
		}
		if i > 0 && *buckets[i-1].High != *b.Low {
			return nil, fmt.Errorf("bucket %d %s does not start where %s ends: %w", i, b, buckets[i-1], ErrGap)
		}
		p := b.probs()
		if p.Home < 0 || p.Draw < 0 || p.Away < 0 {
			return nil, fmt.Errorf("bucket %d %s has a negative probability: %w", i, b, ErrProbabilitySum)
		}
		if math.Abs(p.Sum()-1) > sumTolerance {
			return nil, fmt.Errorf("bucket %d %s sums to %.6f: %w", i, b, p.Sum(), ErrProbabilitySum)
		}
	}

	owned := make([]Bucket, len(buckets))
	copy(owned, buckets)
	return &Table{buckets: owned}, nil
}

// Lookup returns the probabilities of the bucket containing diff. Values past
// the outermost bounds use the outermost buckets.
func (t *Table) Lookup(diff float64) ThreeWay {
	last := len(t.buckets) - 1
	i := sort.Search(last, func(i int) bool {
		return diff < *t.buckets[i].High
	})
	return t.buckets[i].probs()
}

// Buckets returns a copy of the table rows.
func (t *Table) Buckets() []Bucket {
	out := make([]Bucket, len(t.buckets))
	copy(out, t.buckets)
	return out
}

func bound(v float64) *float64 { return &v }

// DefaultBuckets is the calibrated table. Buckets are narrow around zero and
// wide at the extremes.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{High: bound(-400), HomeWin: 0.04, Draw: 0.08, AwayWin: 0.88},
		{Low: bound(-400), High: bound(-250), HomeWin: 0.10, Draw: 0.14, AwayWin: 0.76},
		{Low: bound(-250), High: bound(-150), HomeWin: 0.18, Draw: 0.20, AwayWin: 0.62},
		{Low: bound(-150), High: bound(-100), HomeWin: 0.24, Draw: 0.23, AwayWin: 0.53},
		{Low: bound(-100), High: bound(-50), HomeWin: 0.30, Draw: 0.25, AwayWin: 0.45},
		{Low: bound(-50), High: bound(-20), HomeWin: 0.36, Draw: 0.26, AwayWin: 0.38},
		{Low: bound(-20), High: bound(20), HomeWin: 0.41, Draw: 0.26, AwayWin: 0.33},
		{Low: bound(20), High: bound(50), HomeWin: 0.45, Draw: 0.26, AwayWin: 0.29},
		{Low: bound(50), High: bound(100), HomeWin: 0.50, Draw: 0.24, AwayWin: 0.26},
		{Low: bound(100), High: bound(150), HomeWin: 0.55, Draw: 0.22, AwayWin: 0.23},
		{Low: bound(150), High: bound(250), HomeWin: 0.62, Draw: 0.20, AwayWin: 0.18},
		{Low: bound(250), High: bound(400), HomeWin: 0.74, Draw: 0.14, AwayWin: 0.12},
		{Low: bound(400), HomeWin: 0.86, Draw: 0.08, AwayWin: 0.06},
	}
}
