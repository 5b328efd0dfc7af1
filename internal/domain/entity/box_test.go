package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoxCenter(t *testing.T) {
	b := Box{Left: 10, Top: 20, Width: 8, Height: 6}
	x, y := b.Center()
	require.Equal(t, 14.0, x)
	require.Equal(t, 23.0, y)
}

func TestBoxFromNormalized_FlipsOrigin(t *testing.T) {
	// Нижний левый квадрант изображения 200x100.
	b := BoxFromNormalized(0, 0, 0.5, 0.5, 200, 100)
	require.InDelta(t, 0, b.Left, 1e-9)
	require.InDelta(t, 50, b.Top, 1e-9)
	require.InDelta(t, 100, b.Width, 1e-9)
	require.InDelta(t, 50, b.Height, 1e-9)

	b = BoxFromNormalized(0.25, 0.8, 0.5, 0.2, 200, 100)
	require.InDelta(t, 50, b.Left, 1e-9)
	require.InDelta(t, 0, b.Top, 1e-9)
}

func TestBoxClamp(t *testing.T) {
	b := Box{Left: -5, Top: 90, Width: 20, Height: 30}.Clamp(100, 100)
	require.Equal(t, Box{Left: 0, Top: 90, Width: 15, Height: 10}, b)
}

func TestBoxUnion(t *testing.T) {
	a := Box{Left: 0, Top: 0, Width: 10, Height: 10}
	b := Box{Left: 20, Top: 5, Width: 10, Height: 10}
	require.Equal(t, Box{Left: 0, Top: 0, Width: 30, Height: 15}, a.Union(b))
	require.Equal(t, b, Box{}.Union(b))
}

func TestBoxFromPoints(t *testing.T) {
	b := BoxFromPoints([]float64{3, 10, 7}, []float64{4, 2, 9})
	require.Equal(t, Box{Left: 3, Top: 2, Width: 7, Height: 7}, b)
	require.True(t, BoxFromPoints(nil, nil).Empty())
}
