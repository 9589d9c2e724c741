package terms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juantresde/feterms/utils"
)

// A single P1 tetrahedron: 4 dofs, 1 quadrature point, constant gradients,
// unit weight, coefficient 2. The local matrix must be exactly 2 * G^T G.
func TestLaplaceMatrixTet(t *testing.T) {
	vg := &VolumeGeometry{
		BfGM: utils.NewFieldData(1, 1, 3, 4, []float64{
			-1, 1, 0, 0,
			-1, 0, 1, 0,
			-1, 0, 0, 1,
		}),
		Det: utils.NewFieldData(1, 1, 1, 1, []float64{1.0}),
	}
	coef := utils.NewFieldData(1, 1, 1, 1, []float64{2.0})
	out := utils.NewField(1, 1, 4, 4)
	require.NoError(t, LaplaceMatrix(out, coef, vg))
	assert.InDeltaSlice(t, []float64{
		6, -2, -2, -2,
		-2, 2, 0, 0,
		-2, 0, 2, 0,
		-2, 0, 0, 2,
	}, out.Cell(0).Lev(0), 1.e-15)
}

func TestLaplaceMatrixSymmetricPSD(t *testing.T) {
	var (
		nCell, nQP, dim, nEP = 3, 4, 2, 6
		vg                   = testVolume(nCell, nQP, dim, nEP)
		coef                 = utils.NewFieldData(1, 1, 1, 1, []float64{1.5})
		out                  = utils.NewField(nCell, 1, nEP, nEP)
	)
	require.NoError(t, LaplaceMatrix(out, coef, vg))
	probes := [][]float64{
		{1, 0, 0, 0, 0, 0},
		{1, -1, 1, -1, 1, -1},
		{0.3, 0.1, -2, 0.7, 0.0, 1.1},
	}
	for c := 0; c < nCell; c++ {
		m := out.Cell(c).Lev(0)
		for i := 0; i < nEP; i++ {
			for j := 0; j < nEP; j++ {
				assert.InDelta(t, m[i*nEP+j], m[j*nEP+i], 1.e-13)
			}
		}
		for _, v := range probes {
			assert.GreaterOrEqual(t, quadForm(out.Cell(c), v, v), -1.e-12)
		}
	}
}

// A coefficient with a single cell must behave exactly like the same value
// replicated across the batch, per level too.
func TestLaplaceBroadcastEquivalence(t *testing.T) {
	var (
		nCell, nQP, dim, nEP = 4, 3, 3, 4
		vg                   = testVolume(nCell, nQP, dim, nEP)
		out1                 = utils.NewField(nCell, 1, nEP, nEP)
		out2                 = utils.NewField(nCell, 1, nEP, nEP)
	)
	single := utils.NewField(1, nQP, 1, 1)
	fillSmooth(single, 3.0)
	replicated := utils.NewField(nCell, nQP, 1, 1)
	for c := 0; c < nCell; c++ {
		replicated.Cell(c).CopyFrom(single.Cell(0))
	}
	require.NoError(t, LaplaceMatrix(out1, single, vg))
	require.NoError(t, LaplaceMatrix(out2, replicated, vg))
	assert.Equal(t, out1.Data, out2.Data)

	// One level broadcast across quadrature points versus replicated levels
	perCell := utils.NewFieldData(1, 1, 1, 1, []float64{0.8})
	perQP := utils.NewFieldData(1, nQP, 1, 1, []float64{0.8, 0.8, 0.8})
	require.NoError(t, LaplaceMatrix(out1, perCell, vg))
	require.NoError(t, LaplaceMatrix(out2, perQP, vg))
	assert.InDeltaSlice(t, out1.Data, out2.Data, 1.e-15)
}

// The scalar functional of fields u, v must equal v^T K u with K from
// matrix mode, and the residual must equal K u.
func TestLaplaceFunctionalMatrixConsistency(t *testing.T) {
	var (
		nCell, nQP, dim, nEP = 2, 3, 3, 4
		vg                   = testVolume(nCell, nQP, dim, nEP)
		coef                 = utils.NewFieldData(1, 1, 1, 1, []float64{2.5})
		u                    = []float64{0.2, -1.0, 0.7, 1.3}
		v                    = []float64{1.0, 0.5, -0.3, 0.9}
	)
	K := utils.NewField(nCell, 1, nEP, nEP)
	require.NoError(t, LaplaceMatrix(K, coef, vg))

	gradU := nodalGradients(vg, u)
	gradV := nodalGradients(vg, v)

	res := utils.NewField(nCell, 1, nEP, 1)
	require.NoError(t, Laplace(res, gradU, coef, vg))
	fun := utils.NewField(nCell, 1, 1, 1)
	require.NoError(t, LaplaceEval(fun, gradV, gradU, coef, vg))

	for c := 0; c < nCell; c++ {
		assert.InDeltaSlice(t, matVec(K.Cell(c), u), res.Cell(c).Lev(0), 1.e-12)
		assert.InDelta(t, quadForm(K.Cell(c), v, u), fun.Cell(c).Lev(0)[0], 1.e-12)
	}
}

func TestLaplaceDimensionFault(t *testing.T) {
	vg := &VolumeGeometry{
		BfGM: utils.NewField(1, 1, 4, 5), // 4-D space
		Det:  utils.NewField(1, 1, 1, 1),
	}
	coef := utils.NewFieldData(1, 1, 1, 1, []float64{1.0})
	out := utils.NewField(1, 1, 5, 5)
	out.Cell(0).Fill(3)
	err := LaplaceMatrix(out, coef, vg)
	assert.ErrorIs(t, err, ErrDimension)
	for _, val := range out.Cell(0).Lev(0) {
		assert.Equal(t, 3.0, val)
	}
}

func TestLaplaceContractViolations(t *testing.T) {
	vg := testVolume(2, 2, 2, 3)
	coef := utils.NewFieldData(1, 1, 1, 1, []float64{1.0})

	// Wrong output shape
	bad := utils.NewField(2, 1, 3, 2)
	assert.ErrorIs(t, LaplaceMatrix(bad, coef, vg), ErrShape)

	// Coefficient cell count neither 1 nor batch size
	out := utils.NewField(2, 1, 3, 3)
	coef3 := utils.NewField(3, 1, 1, 1)
	assert.ErrorIs(t, LaplaceMatrix(out, coef3, vg), ErrShape)

	// Quadrature count mismatch between coefficient and geometry
	coefQP := utils.NewField(1, 5, 1, 1)
	assert.ErrorIs(t, LaplaceMatrix(out, coefQP, vg), ErrShape)
}
