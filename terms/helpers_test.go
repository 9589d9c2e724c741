package terms

import (
	"math"

	"github.com/juantresde/feterms/utils"
)

// fillSmooth fills a Field with deterministic, bounded, nonzero values.
func fillSmooth(f *utils.Field, seed float64) {
	for i := range f.Data {
		f.Data[i] = math.Sin(seed+float64(i)*0.73) + 1.25
	}
}

// testVolume builds a synthetic volume geometry with positive quadrature
// weights.
func testVolume(nCell, nQP, dim, nEP int) *VolumeGeometry {
	vg := &VolumeGeometry{
		BfGM: utils.NewField(nCell, nQP, dim, nEP),
		Det:  utils.NewField(nCell, nQP, 1, 1),
	}
	fillSmooth(vg.BfGM, 0.3)
	for i := range vg.Det.Data {
		vg.Det.Data[i] = 0.25 + 0.05*float64(i%4)
	}
	return vg
}

// nodalGradients computes per cell the gradient field G_q * u of a nodal
// vector u, the shape a residual or functional evaluator expects.
func nodalGradients(vg *VolumeGeometry, u []float64) *utils.Field {
	var (
		nCell, nQP, dim = vg.BfGM.NCell, vg.NQP(), vg.Dim()
		un              = utils.NewFieldData(1, 1, len(u), 1, u)
		grad            = utils.NewField(nCell, nQP, dim, 1)
	)
	for c := 0; c < nCell; c++ {
		if err := applyGradLeft(grad.Cell(c), vg.BfGM.Cell(c), un.Cell(0)); err != nil {
			panic(err)
		}
	}
	return grad
}

// quadForm computes v^T * M * u for one cell's local matrix.
func quadForm(m utils.View, v, u []float64) (s float64) {
	var (
		nr = m.F.NRow
		nc = m.F.NCol
		mm = m.Lev(0)
	)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			s += v[i] * mm[i*nc+j] * u[j]
		}
	}
	return
}

// matVec computes M * u for one cell's local matrix.
func matVec(m utils.View, u []float64) (r []float64) {
	var (
		nr = m.F.NRow
		nc = m.F.NCol
		mm = m.Lev(0)
	)
	r = make([]float64, nr)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			r[i] += mm[i*nc+j] * u[j]
		}
	}
	return
}
