package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldLayout(t *testing.T) {
	// Cell/level addressing
	{
		f := NewField(2, 2, 2, 3)
		for i := range f.Data {
			f.Data[i] = float64(i)
		}
		assert.Equal(t, 6, f.LevSize())
		assert.Equal(t, 12, f.CellSize())
		assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, f.Cell(0).Lev(0))
		assert.Equal(t, []float64{6, 7, 8, 9, 10, 11}, f.Cell(0).Lev(1))
		assert.Equal(t, []float64{12, 13, 14, 15, 16, 17}, f.Cell(1).Lev(0))
	}
	// Level broadcast: a one-level view serves every quadrature point
	{
		f := NewField(1, 1, 2, 2)
		copy(f.Cell(0).Lev(0), []float64{1, 2, 3, 4})
		v := f.Cell(0)
		assert.Equal(t, v.Lev(0), v.LevN(3, 4))
	}
	// Window aliases storage
	{
		f := NewField(3, 1, 1, 2)
		for i := range f.Data {
			f.Data[i] = float64(i)
		}
		w := f.Window(1, 3)
		assert.Equal(t, 2, w.NCell)
		assert.Equal(t, []float64{2, 3}, w.Cell(0).Lev(0))
		w.Cell(0).Fill(-1)
		assert.Equal(t, []float64{-1, -1}, f.Cell(1).Lev(0))
	}
	// Bad backing slice length
	{
		assert.Panics(t, func() {
			NewFieldData(1, 1, 2, 2, []float64{1, 2, 3})
		})
	}
}

func TestFieldScaling(t *testing.T) {
	f := NewField(1, 2, 1, 2)
	f.Cell(0).Fill(1)
	f.Cell(0).Scale(3)
	assert.Equal(t, []float64{3, 3, 3, 3}, f.Cell(0).Slice())

	// Per-level weights
	f.Cell(0).ScaleLevels([]float64{2, 10})
	assert.Equal(t, []float64{6, 6, 30, 30},
		f.Cell(0).Slice())

	// Single weight broadcasts
	f.Cell(0).ScaleLevels([]float64{0.5})
	assert.Equal(t, []float64{3, 3, 15, 15}, f.Cell(0).Slice())

	assert.Panics(t, func() { f.Cell(0).ScaleLevels([]float64{1, 2, 3}) })
}

func TestMul(t *testing.T) {
	// Plain per-level product
	{
		a := NewFieldData(1, 2, 2, 2, []float64{
			1, 2,
			3, 4,
			// level 1
			1, 0,
			0, 1,
		})
		b := NewFieldData(1, 2, 2, 1, []float64{
			1,
			1,
			// level 1
			5,
			7,
		})
		out := NewField(1, 2, 2, 1)
		Mul(out.Cell(0), a.Cell(0), b.Cell(0), false, false)
		assert.Equal(t, []float64{3, 7}, out.Cell(0).Lev(0))
		assert.Equal(t, []float64{5, 7}, out.Cell(0).Lev(1))
	}
	// Transposed operand
	{
		a := NewFieldData(1, 1, 2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		out := NewField(1, 1, 3, 3)
		Mul(out.Cell(0), a.Cell(0), a.Cell(0), true, false)
		assert.Equal(t, []float64{
			17, 22, 27,
			22, 29, 36,
			27, 36, 45,
		}, out.Cell(0).Lev(0))
	}
	// Level broadcast: one-level b reused at every level of out
	{
		a := NewFieldData(1, 2, 1, 2, []float64{
			1, 2,
			3, 4,
		})
		b := NewFieldData(1, 1, 2, 1, []float64{
			10,
			100,
		})
		out := NewField(1, 2, 1, 1)
		Mul(out.Cell(0), a.Cell(0), b.Cell(0), false, false)
		assert.Equal(t, []float64{210}, out.Cell(0).Lev(0))
		assert.Equal(t, []float64{430}, out.Cell(0).Lev(1))
	}
}

func TestSumLevelsScaled(t *testing.T) {
	in := NewFieldData(1, 3, 1, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})
	out := NewField(1, 1, 1, 2)
	w := []float64{1, 10, 100}
	SumLevelsScaled(out.Cell(0), in.Cell(0), w)
	assert.Equal(t, []float64{531, 642}, out.Cell(0).Lev(0))

	// Overwrites, does not accumulate
	SumLevelsScaled(out.Cell(0), in.Cell(0), w)
	assert.Equal(t, []float64{531, 642}, out.Cell(0).Lev(0))

	// Linear in the weights
	w2 := []float64{2, 20, 200}
	out2 := NewField(1, 1, 1, 2)
	SumLevelsScaled(out2.Cell(0), in.Cell(0), w2)
	assert.Equal(t, []float64{2 * 531, 2 * 642}, out2.Cell(0).Lev(0))

	// Linear in the input
	in.Cell(0).Scale(2)
	SumLevelsScaled(out2.Cell(0), in.Cell(0), w)
	assert.Equal(t, []float64{2 * 531, 2 * 642}, out2.Cell(0).Lev(0))

	// Weight count must match the input's level count
	assert.Panics(t, func() {
		SumLevelsScaled(out.Cell(0), in.Cell(0), []float64{1, 2})
	})
}
