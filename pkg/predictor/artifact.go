package predictor

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-carprice/pkg/prediction"
)

// Artifact is an exported linear pricing pipeline: an intercept, one
// coefficient per numeric feature, and one weight per categorical value.
// Categorical values without a weight contribute nothing unless Strict is
// set, in which case they fail the prediction.
type Artifact struct {
	Name        string                        `yaml:"name" json:"name"`
	Intercept   float64                       `yaml:"intercept" json:"intercept"`
	Floor       *float64                      `yaml:"floor,omitempty" json:"floor,omitempty"`
	Strict      bool                          `yaml:"strict" json:"strict"`
	Numeric     map[string]float64            `yaml:"numeric" json:"numeric"`
	Categorical map[string]map[string]float64 `yaml:"categorical" json:"categorical"`
}

var _ Predictor = (*Artifact)(nil)

// ParseArtifact decodes a YAML or JSON artifact and checks that every
// feature it references exists in the record schema.
func ParseArtifact(data []byte) (*Artifact, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: artifact is empty", ErrArtifactUnavailable)
	}
	var a Artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrArtifactUnavailable, err)
	}

	numeric := prediction.Record{}.Numeric()
	for feature := range a.Numeric {
		if _, ok := numeric[feature]; !ok {
			return nil, fmt.Errorf("%w: unknown numeric feature %q", ErrArtifactUnavailable, feature)
		}
	}
	categorical := prediction.Record{}.Categorical()
	for feature := range a.Categorical {
		if _, ok := categorical[feature]; !ok {
			return nil, fmt.Errorf("%w: unknown categorical feature %q", ErrArtifactUnavailable, feature)
		}
	}
	return &a, nil
}

// LoadArtifact reads an artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifactUnavailable, err)
	}
	return ParseArtifact(data)
}

// Predict scores rec. Features are summed in sorted order so the result is
// deterministic for a given record and artifact.
func (a *Artifact) Predict(ctx context.Context, rec prediction.Record) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	total := a.Intercept

	numeric := rec.Numeric()
	for _, feature := range sortedKeys(a.Numeric) {
		total += a.Numeric[feature] * numeric[feature]
	}

	categorical := rec.Categorical()
	for _, feature := range sortedKeys(a.Categorical) {
		value := categorical[feature]
		weight, ok := a.Categorical[feature][value]
		if !ok && a.Strict {
			return 0, fmt.Errorf("unknown category %q in column %s", value, feature)
		}
		total += weight
	}

	if a.Floor != nil && total < *a.Floor {
		total = *a.Floor
	}
	return total, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
