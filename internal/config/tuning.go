package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/utakatalp/season-predictor/internal/predict"
)

// Tuning holds every constant that may be recalibrated without a rebuild.
type Tuning struct {
	Trials         int              `yaml:"trials"`
	UnrankedRating float64          `yaml:"unranked_rating"`
	Model          predict.Params   `yaml:"model"`
	Buckets        []predict.Bucket `yaml:"buckets"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Trials:         10000,
		UnrankedRating: 850,
		Model:          predict.DefaultParams(),
		Buckets:        predict.DefaultBuckets(),
	}
}

// LoadTuning reads a YAML tuning file over the defaults. Keys missing from
// the file keep their default; a buckets list replaces the whole table.
// An empty path returns the defaults.
func LoadTuning(path string) (Tuning, error) {
	if path == "" {
		return DefaultTuning(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning: %w", err)
	}
	return ParseTuning(data)
}

// ParseTuning decodes and validates a tuning document.
func ParseTuning(data []byte) (Tuning, error) {
	t := DefaultTuning()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, err
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.Trials <= 0 {
		return errors.New("tuning: trials must be positive")
	}
	if t.UnrankedRating <= 0 {
		return errors.New("tuning: unranked_rating must be positive")
	}
	if _, err := t.Predictor(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	return nil
}

// Predictor builds the predictor described by the tuning.
func (t Tuning) Predictor(opts ...predict.Option) (*predict.Predictor, error) {
	table, err := predict.NewTable(t.Buckets)
	if err != nil {
		return nil, fmt.Errorf("build probability table: %w", err)
	}
	return predict.New(t.Model, table, opts...)
}
