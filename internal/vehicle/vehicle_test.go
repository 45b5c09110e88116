package vehicle

import (
	"errors"
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	v, err := New(2, 10, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Mass() != 2 {
		t.Errorf("expected mass 2, got %f", v.Mass())
	}
	if v.Velocity() != 10 {
		t.Errorf("expected velocity 10, got %f", v.Velocity())
	}
	if v.DragCoefficient() != 0.1 {
		t.Errorf("expected k 0.1, got %f", v.DragCoefficient())
	}
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name string
		mass float64
		k    float64
		want error
	}{
		{"negative drag", 1, -0.05, ErrNegativeDrag},
		{"negative mass", -1, 0.05, ErrInvalidMass},
		{"zero mass", 0, 0.05, ErrInvalidMass},
		{"NaN mass", math.NaN(), 0.05, ErrInvalidMass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(tt.mass, 5, tt.k)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if v != nil {
				t.Error("expected nil vehicle on error")
			}
		})
	}
}

func TestNewZeroDragAllowed(t *testing.T) {
	if _, err := New(1, 5, 0); err != nil {
		t.Errorf("zero drag should be accepted, got %v", err)
	}
}

func TestDrag(t *testing.T) {
	tests := []struct {
		name     string
		mass     float64
		vel      float64
		k        float64
		expected float64
	}{
		{"at rest", 1, 0, 0.05, 0},
		{"reversing", 0.1, -9, 0.01, 0.81},
		{"forward", 10, 5, 0.05, -1.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(tt.mass, tt.vel, tt.k)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := v.Drag(); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("expected drag %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestDragOpposesMotion(t *testing.T) {
	for _, vel := range []float64{-50, -3.2, -0.001, 0.001, 1, 42} {
		v, _ := New(1, vel, 0.2)
		d := v.Drag()
		if d*vel >= 0 {
			t.Errorf("velocity %f: drag %f does not oppose motion", vel, d)
		}
		if math.Abs(math.Abs(d)-0.2*vel*vel) > 1e-9 {
			t.Errorf("velocity %f: expected magnitude %f, got %f", vel, 0.2*vel*vel, math.Abs(d))
		}
	}
}

func TestUpdate(t *testing.T) {
	v, _ := New(1, 0, 0.05)
	if got := v.Update(0, 0.01); got != 0 {
		t.Errorf("expected 0 at rest with no force, got %f", got)
	}

	v, _ = New(1, 10, 0.05)
	expected := 10 + v.Drag()/v.Mass()*0.01
	if got := v.Update(0, 0.01); got != expected {
		t.Errorf("expected %v, got %v", expected, got)
	}

	v, _ = New(2, 5, 0.01)
	expected = 5 + (1.2+v.Drag())/v.Mass()*0.01
	if got := v.Update(1.2, 0.01); math.Abs(got-expected) > 1e-12 {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestUpdateIsPure(t *testing.T) {
	v, _ := New(1, 10, 0.05)
	a := v.Update(3, 0.1)
	b := v.Update(3, 0.1)
	if a != b {
		t.Errorf("repeated update differs: %v vs %v", a, b)
	}
	if v.Velocity() != 10 {
		t.Errorf("update mutated velocity: got %f", v.Velocity())
	}

	v.SetVelocity(a)
	if v.Velocity() != a {
		t.Errorf("expected committed velocity %f, got %f", a, v.Velocity())
	}
}
