package terms

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/juantresde/feterms/utils"
)

func TestBuildGradGramian(t *testing.T) {
	// 2-D fixture
	{
		g := utils.NewFieldData(1, 1, 2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		out := utils.NewField(1, 1, 3, 3)
		assert.NoError(t, buildGradGramian(out.Cell(0), g.Cell(0)))
		assert.Equal(t, []float64{
			17, 22, 27,
			22, 29, 36,
			27, 36, 45,
		}, out.Cell(0).Lev(0))
	}
	// 3-D versus the generic product
	{
		g := utils.NewField(1, 3, 3, 4)
		fillSmooth(g, 1.1)
		out := utils.NewField(1, 3, 4, 4)
		ref := utils.NewField(1, 3, 4, 4)
		assert.NoError(t, buildGradGramian(out.Cell(0), g.Cell(0)))
		utils.Mul(ref.Cell(0), g.Cell(0), g.Cell(0), true, false)
		assert.InDeltaSlice(t, ref.Cell(0).Slice(), out.Cell(0).Slice(), 1.e-14)
	}
	// Unsupported dimension: error, output untouched
	{
		g := utils.NewField(1, 1, 4, 3)
		out := utils.NewField(1, 1, 3, 3)
		out.Cell(0).Fill(7)
		err := buildGradGramian(out.Cell(0), g.Cell(0))
		assert.ErrorIs(t, err, ErrDimension)
		assert.Equal(t, []float64{7, 7, 7, 7, 7, 7, 7, 7, 7}, out.Cell(0).Lev(0))
	}
}

func TestApplyGradActions(t *testing.T) {
	// applyGradLeft against the generic product, including the per-cell
	// broadcast of M
	{
		g := utils.NewField(1, 2, 2, 3)
		fillSmooth(g, 0.4)
		m := utils.NewField(1, 1, 3, 2) // one level: reused at both qp
		fillSmooth(m, 2.2)
		out := utils.NewField(1, 2, 2, 2)
		ref := utils.NewField(1, 2, 2, 2)
		assert.NoError(t, applyGradLeft(out.Cell(0), g.Cell(0), m.Cell(0)))
		utils.Mul(ref.Cell(0), g.Cell(0), m.Cell(0), false, false)
		assert.InDeltaSlice(t, ref.Cell(0).Slice(), out.Cell(0).Slice(), 1.e-14)
	}
	// applyGradTranspose against the generic product, 3-D
	{
		g := utils.NewField(1, 2, 3, 4)
		fillSmooth(g, 0.9)
		m := utils.NewField(1, 2, 3, 1)
		fillSmooth(m, 1.7)
		out := utils.NewField(1, 2, 4, 1)
		ref := utils.NewField(1, 2, 4, 1)
		assert.NoError(t, applyGradTranspose(out.Cell(0), g.Cell(0), m.Cell(0)))
		utils.Mul(ref.Cell(0), g.Cell(0), m.Cell(0), true, false)
		assert.InDeltaSlice(t, ref.Cell(0).Slice(), out.Cell(0).Slice(), 1.e-14)
	}
	// Unsupported dimension
	{
		g := utils.NewField(1, 1, 1, 3)
		m := utils.NewField(1, 1, 3, 1)
		out := utils.NewField(1, 1, 1, 1)
		assert.ErrorIs(t, applyGradLeft(out.Cell(0), g.Cell(0), m.Cell(0)), ErrDimension)
		assert.ErrorIs(t, applyGradTranspose(out.Cell(0), g.Cell(0), m.Cell(0)), ErrDimension)
	}
}
