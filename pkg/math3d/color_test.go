package math3d

import (
	"encoding/json"
	"math"
	"testing"
)

func inRange(c Color) bool {
	for _, ch := range [3]float64{c.R(), c.G(), c.B()} {
		if math.IsNaN(ch) || ch < 0 || ch > 255 {
			return false
		}
	}
	return true
}

func TestNewColorClamps(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		want    [3]float64
	}{
		{"in range", 10, 20, 30, [3]float64{10, 20, 30}},
		{"over", 300, 255.5, 1e9, [3]float64{255, 255, 255}},
		{"under", -1, -0.01, -1e9, [3]float64{0, 0, 0}},
		{"nan", math.NaN(), 5, math.Inf(1), [3]float64{0, 5, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewColor(tt.r, tt.g, tt.b)
			got := [3]float64{c.R(), c.G(), c.B()}
			if got != tt.want {
				t.Errorf("NewColor(%v, %v, %v) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestColorOperationsStayInRange(t *testing.T) {
	base := NewColor(200, 100, 50)
	tests := []struct {
		name string
		got  Color
	}{
		{"scale up", base.Scale(10)},
		{"scale negative", base.Scale(-3)},
		{"add", base.Add(NewColor(200, 200, 250))},
		{"mulvec", base.MulVec(V3(2, -1, 100))},
		{"mulvec nan", base.MulVec(V3(math.NaN(), 1, 1))},
		{"average", base.Average(NewColor(255, 255, 255))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !inRange(tt.got) {
				t.Errorf("%s produced out-of-range color %v", tt.name, tt.got)
			}
		})
	}
}

func TestColorMulVecPerChannel(t *testing.T) {
	got := NewColor(255, 0, 0).MulVec(V3(0.1, 0.1, 0.1))
	if math.Abs(got.R()-25.5) > testEps || got.G() != 0 || got.B() != 0 {
		t.Errorf("MulVec = %v, want (25.5, 0, 0)", got)
	}
}

func TestColorAverage(t *testing.T) {
	got := NewColor(0, 100, 255).Average(NewColor(100, 100, 0))
	if got != NewColor(50, 100, 127.5) {
		t.Errorf("Average = %v", got)
	}
}

func TestColorRGBARoundsHalfToEven(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{25.5, 26},
		{26.5, 26},
		{0.4, 0},
		{254.6, 255},
		{255, 255},
	}

	for _, tt := range tests {
		got := NewColor(tt.in, 0, 0).RGBA()
		if got.R != tt.want || got.A != 255 {
			t.Errorf("RGBA(%v).R = %d (A=%d), want %d", tt.in, got.R, got.A, tt.want)
		}
	}
}

func TestColorJSON(t *testing.T) {
	data, err := json.Marshal(RGB(92, 195, 206))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"r":92,"g":195,"b":206}` {
		t.Errorf("Marshal = %s", data)
	}

	var c Color
	if err := json.Unmarshal([]byte(`{"r":300,"g":-4,"b":12.5}`), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c != NewColor(255, 0, 12.5) {
		t.Errorf("Unmarshal clamped = %v", c)
	}

	if err := json.Unmarshal([]byte(`"red"`), &c); err == nil {
		t.Error("expected error decoding a string")
	}
}
