package model

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/sha3"

	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
)

// FormatVersion is the artifact layout this package reads.
const FormatVersion = 1

const (
	KindTreeEnsemble = "tree_ensemble"
	KindLogistic     = "logistic"
)

// artifactFile is the on-disk JSON layout.
type artifactFile struct {
	FormatVersion int             `json:"format_version"`
	ModelVersion  string          `json:"model_version"`
	FeatureNames  []string        `json:"feature_names"`
	Scaler        *StandardScaler `json:"scaler"`
	Classifier    struct {
		Kind         string    `json:"kind"`
		Classes      []int     `json:"classes"`
		Trees        []Tree    `json:"trees"`
		Coefficients []float64 `json:"coefficients"`
		Intercept    float64   `json:"intercept"`
	} `json:"classifier"`
}

// Artifact is a loaded, validated, immutable trained model.
type Artifact struct {
	ModelVersion string
	Kind         string
	FeatureNames []string
	Classifier   Classifier
	// Scaler is nil when the artifact was exported without fitted scaling parameters.
	Scaler *StandardScaler
	// Digest is the hex SHA3-256 of the artifact file, empty when decoded from a stream.
	Digest string
}

// LoadArtifact reads and validates the artifact at path. Every failure is an *domain.ArtifactLoadError.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ArtifactLoadError{Path: path, Err: err}
	}
	a, err := DecodeArtifact(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.ArtifactLoadError{Path: path, Err: err}
	}
	sum := sha3.Sum256(data)
	a.Digest = hex.EncodeToString(sum[:])
	return a, nil
}

// DecodeArtifact parses an artifact and checks it against domain.FeatureNames.
func DecodeArtifact(r io.Reader) (*Artifact, error) {
	var f artifactFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if f.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("format_version %d: %w", f.FormatVersion, domain.ErrUnsupportedArtifactVersion)
	}
	if f.ModelVersion == "" {
		return nil, errors.New("model_version is required")
	}
	if err := checkFeatureNames(f.FeatureNames); err != nil {
		return nil, err
	}

	n := domain.FeatureCount
	a := &Artifact{
		ModelVersion: f.ModelVersion,
		Kind:         f.Classifier.Kind,
		FeatureNames: f.FeatureNames,
	}
	if f.Scaler != nil {
		if err := f.Scaler.validate(n); err != nil {
			return nil, err
		}
		a.Scaler = f.Scaler
	}

	var err error
	switch f.Classifier.Kind {
	case KindTreeEnsemble:
		a.Classifier, err = NewTreeEnsemble(f.Classifier.Classes, f.Classifier.Trees, n)
	case KindLogistic:
		a.Classifier, err = NewLogistic(f.Classifier.Coefficients, f.Classifier.Intercept, n)
	default:
		err = fmt.Errorf("unknown classifier kind %q", f.Classifier.Kind)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func checkFeatureNames(names []string) error {
	if len(names) != domain.FeatureCount {
		return fmt.Errorf("artifact declares %d features, want %d: %w", len(names), domain.FeatureCount, domain.ErrDimensionMismatch)
	}
	for i, name := range names {
		if name != domain.FeatureNames[i] {
			return fmt.Errorf("feature %d is %q, want %q", i, name, domain.FeatureNames[i])
		}
	}
	return nil
}
