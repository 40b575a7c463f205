package math3d

import (
	"testing"
)

func BenchmarkMat3Mul(b *testing.B) {
	m1 := RotationX(0.3)
	m2 := RotationY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat3MulVec(b *testing.B) {
	m := RotationX(0.3).Mul(RotationY(0.5))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.MulVec(v)
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = v.Normalize()
	}
}

func BenchmarkVec3Cross(b *testing.B) {
	v1 := V3(1, 2, 3)
	v2 := V3(4, 5, 6)

	for b.Loop() {
		_ = v1.Cross(v2)
	}
}

func BenchmarkVec3Dot(b *testing.B) {
	v1 := V3(1, 2, 3)
	v2 := V3(4, 5, 6)

	for b.Loop() {
		_ = v1.Dot(v2)
	}
}

func BenchmarkVec3ReflectAbout(b *testing.B) {
	v := V3(1, 3, 1)
	n := V3(0, 1, 0)

	for b.Loop() {
		_ = v.ReflectAbout(n)
	}
}

func BenchmarkColorMulVec(b *testing.B) {
	c := NewColor(255, 128, 0)
	gain := V3(0.4, 1.2, 0.9)

	for b.Loop() {
		_ = c.MulVec(gain)
	}
}
