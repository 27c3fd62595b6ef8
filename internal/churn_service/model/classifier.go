package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
)

// Classifier scores a feature vector. Implementations are read-only after construction and safe
// for concurrent use.
type Classifier interface {
	Predict(v domain.FeatureVector) (domain.Label, error)
	// PredictProba returns p(churn).
	PredictProba(v domain.FeatureVector) (float64, error)
	NumFeatures() int
}

// TreeNode is one node of a decision tree. Leaves have Left == Right == -1 and carry the class
// distribution in Value, aligned with the ensemble's classes.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

func (n TreeNode) isLeaf() bool { return n.Left < 0 && n.Right < 0 }

// Tree is a flattened CART tree; node 0 is the root. x[feature] <= threshold goes left.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeEnsemble averages the leaf distributions of its trees, as extra-trees and random forests do.
type TreeEnsemble struct {
	Classes  []int
	Trees    []Tree
	features int
}

// NewTreeEnsemble validates the trees against the class list and feature count.
func NewTreeEnsemble(classes []int, trees []Tree, features int) (*TreeEnsemble, error) {
	if len(classes) != 2 {
		return nil, fmt.Errorf("tree ensemble needs exactly 2 classes, got %d", len(classes))
	}
	for _, c := range classes {
		if c != int(domain.LabelRetained) && c != int(domain.LabelChurned) {
			return nil, fmt.Errorf("unsupported class label %d", c)
		}
	}
	if classes[0] == classes[1] {
		return nil, fmt.Errorf("duplicate class label %d", classes[0])
	}
	if len(trees) == 0 {
		return nil, errors.New("tree ensemble has no trees")
	}
	for ti, tree := range trees {
		if len(tree.Nodes) == 0 {
			return nil, fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, node := range tree.Nodes {
			if node.isLeaf() {
				if len(node.Value) != len(classes) {
					return nil, fmt.Errorf("tree %d node %d: leaf has %d values, want %d", ti, ni, len(node.Value), len(classes))
				}
				if err := checkLeafWeights(node.Value); err != nil {
					return nil, fmt.Errorf("tree %d node %d: %w", ti, ni, err)
				}
				continue
			}
			if node.Feature < 0 || node.Feature >= features {
				return nil, fmt.Errorf("tree %d node %d: feature %d out of range: %w", ti, ni, node.Feature, domain.ErrDimensionMismatch)
			}
			if node.Left <= ni || node.Right <= ni || node.Left >= len(tree.Nodes) || node.Right >= len(tree.Nodes) {
				return nil, fmt.Errorf("tree %d node %d: children must point forward inside the tree", ti, ni)
			}
		}
	}
	return &TreeEnsemble{Classes: classes, Trees: trees, features: features}, nil
}

// checkLeafWeights requires finite non-negative class weights with a positive total.
func checkLeafWeights(weights []float64) error {
	for ci, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("leaf weight %d is %v, must be finite and non-negative", ci, w)
		}
	}
	if floats.Sum(weights) <= 0 {
		return errors.New("leaf weights sum to zero")
	}
	return nil
}

func (e *TreeEnsemble) NumFeatures() int { return e.features }

func (e *TreeEnsemble) distribution(v domain.FeatureVector) ([]float64, error) {
	if len(v) != e.features {
		return nil, &domain.InferenceError{Err: fmt.Errorf("model expects %d features, got %d: %w", e.features, len(v), domain.ErrDimensionMismatch)}
	}
	sum := make([]float64, len(e.Classes))
	for ti, tree := range e.Trees {
		leaf, err := tree.walk(v)
		if err != nil {
			return nil, &domain.InferenceError{Err: fmt.Errorf("tree %d: %w", ti, err)}
		}
		floats.AddScaled(sum, 1/floats.Sum(leaf.Value), leaf.Value)
	}
	floats.Scale(1/float64(len(e.Trees)), sum)
	return sum, nil
}

func (t Tree) walk(v domain.FeatureVector) (TreeNode, error) {
	idx := 0
	// Children always point forward, so at most len(Nodes) steps are taken.
	for steps := 0; steps <= len(t.Nodes); steps++ {
		node := t.Nodes[idx]
		if node.isLeaf() {
			return node, nil
		}
		if v[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return TreeNode{}, errors.New("tree walk did not reach a leaf")
}

func (e *TreeEnsemble) Predict(v domain.FeatureVector) (domain.Label, error) {
	dist, err := e.distribution(v)
	if err != nil {
		return 0, err
	}
	best := 0
	for ci := 1; ci < len(dist); ci++ {
		if dist[ci] > dist[best] {
			best = ci
		}
	}
	return domain.Label(e.Classes[best]), nil
}

func (e *TreeEnsemble) PredictProba(v domain.FeatureVector) (float64, error) {
	dist, err := e.distribution(v)
	if err != nil {
		return 0, err
	}
	for ci, c := range e.Classes {
		if c == int(domain.LabelChurned) {
			return dist[ci], nil
		}
	}
	return 0, nil
}

// Logistic is a binary logistic regression model.
type Logistic struct {
	Coefficients []float64
	Intercept    float64
}

// NewLogistic checks the coefficient count against the feature count.
func NewLogistic(coefficients []float64, intercept float64, features int) (*Logistic, error) {
	if len(coefficients) != features {
		return nil, fmt.Errorf("logistic model has %d coefficients, want %d: %w", len(coefficients), features, domain.ErrDimensionMismatch)
	}
	return &Logistic{Coefficients: coefficients, Intercept: intercept}, nil
}

func (l *Logistic) NumFeatures() int { return len(l.Coefficients) }

func (l *Logistic) PredictProba(v domain.FeatureVector) (float64, error) {
	if len(v) != len(l.Coefficients) {
		return 0, &domain.InferenceError{Err: fmt.Errorf("model expects %d features, got %d: %w", len(l.Coefficients), len(v), domain.ErrDimensionMismatch)}
	}
	z := l.Intercept + floats.Dot(l.Coefficients, v)
	return 1 / (1 + math.Exp(-z)), nil
}

func (l *Logistic) Predict(v domain.FeatureVector) (domain.Label, error) {
	p, err := l.PredictProba(v)
	if err != nil {
		return 0, err
	}
	if p >= 0.5 {
		return domain.LabelChurned, nil
	}
	return domain.LabelRetained, nil
}
