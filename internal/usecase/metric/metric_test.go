package metric

import (
	"errors"
	"math"
	"testing"

	"github.com/fullscreen-triangle/hugure/internal/domain"
)

func TestMeasure_ExactTarget(t *testing.T) {
	m := New(domain.Vector{1, 2, 3})

	d, err := m.Measure(domain.NewCandidate(domain.Vector{1, 2, 3}, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Total() != 0 {
		t.Errorf("distance to self: got %g, want 0", d.Total())
	}
}

func TestMeasure_AxisPartition(t *testing.T) {
	// Components 0, 3 feed knowledge; 1, 4 time; 2, 5 entropy.
	m := New(domain.Vector{0, 0, 0, 0, 0, 0})

	d, err := m.Measure(domain.NewCandidate(domain.Vector{3, 1, 2, 4, 2, 0}, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := d.Knowledge(), 5.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("knowledge: got %g, want %g", got, want)
	}
	if got, want := d.Time(), math.Sqrt(5); math.Abs(got-want) > 1e-9 {
		t.Errorf("time: got %g, want %g", got, want)
	}
	if got, want := d.Entropy(), 2.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("entropy: got %g, want %g", got, want)
	}
}

func TestMeasure_TotalIsFullEuclidean(t *testing.T) {
	// The axis partition must preserve the full Euclidean distance in the
	// total, whatever the dimensionality.
	target := domain.Vector{1, -2, 3, 0, 5}
	features := domain.Vector{-1, 4, 2, 2, 1}
	m := New(target)

	d, err := m.Measure(domain.NewCandidate(features, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := features.DistanceTo(target)
	if math.Abs(d.Total()-want) > 1e-9 {
		t.Errorf("total: got %g, want Euclidean %g", d.Total(), want)
	}
}

func TestMeasure_DimensionMismatch(t *testing.T) {
	m := New(domain.Vector{0, 0, 0})

	_, err := m.Measure(domain.NewCandidate(domain.Vector{1, 2}, nil))
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}

	var de *domain.DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DimensionError, got %T", err)
	}
	if de.Want != 3 || de.Got != 2 {
		t.Errorf("dimension error: want %d/%d, got %d/%d", 3, 2, de.Want, de.Got)
	}
}

func TestMetric_CopiesTarget(t *testing.T) {
	target := domain.Vector{1, 1}
	m := New(target)
	target[0] = 99

	d, err := m.Measure(domain.NewCandidate(domain.Vector{1, 1}, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Total() != 0 {
		t.Error("metric aliases the caller's target slice")
	}
}

func TestMetric_Dimensions(t *testing.T) {
	if got := New(domain.Vector{0, 0, 0, 0}).Dimensions(); got != 4 {
		t.Errorf("Dimensions: got %d, want 4", got)
	}
}
