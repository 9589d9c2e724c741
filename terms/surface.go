package terms

import (
	"fmt"

	"github.com/juantresde/feterms/utils"
)

// FluxMode selects how SurfaceFlux reports the accumulated flux.
type FluxMode int

const (
	// FluxTotal reports the quadrature sum as is.
	FluxTotal FluxMode = iota
	// FluxMean divides the sum by the cell's facet area.
	FluxMean
)

// SurfaceFlux evaluates the boundary flux functional per facet cell:
//
//	out_c = sum_q w_q * n_q^T (D_q grad_q)
//
// out is [NCell x 1 x 1 x 1]. With FluxMean the reduced scalar is divided
// by the facet area, yielding the average normal flux over the facet.
func SurfaceFlux(out, grad, mtxD *utils.Field, sg *SurfaceGeometry, mode FluxMode) error {
	const name = "SurfaceFlux"
	nCell := out.NCell
	if err := sg.check(name, nCell); err != nil {
		return err
	}
	var (
		nQP, dim = sg.NQP(), sg.Dim()
	)
	if err := checkCells(name, "gradient", grad, nCell); err != nil {
		return err
	}
	if err := checkQP(name, "gradient", grad, nQP); err != nil {
		return err
	}
	if grad.NRow != dim || grad.NCol != 1 {
		return fmt.Errorf("%s: %w: gradient is %s, want %d x 1 per quadrature point",
			name, ErrShape, grad, dim)
	}
	if err := checkCells(name, "diffusivity", mtxD, nCell); err != nil {
		return err
	}
	if err := checkQP(name, "diffusivity", mtxD, nQP); err != nil {
		return err
	}
	if mtxD.NRow != dim || mtxD.NCol != dim {
		return fmt.Errorf("%s: %w: diffusivity is %s, want %d x %d per quadrature point",
			name, ErrShape, mtxD, dim, dim)
	}
	if out.NLev != 1 || out.NRow != 1 || out.NCol != 1 {
		return fmt.Errorf("%s: %w: out is %s, want 1 x 1 per cell",
			name, ErrShape, out)
	}
	var (
		dgp   = utils.NewField(1, nQP, dim, 1)
		ntdgp = utils.NewField(1, nQP, 1, 1)
		nv    = sg.Normal.Cell(0)
		dv    = sg.Det.Cell(0)
		av    = sg.Area.Cell(0)
		dm    = mtxD.Cell(0)
		gr    = grad.Cell(0)
	)
	for c := 0; c < nCell; c++ {
		if sg.Normal.NCell > 1 {
			nv = sg.Normal.Cell(c)
		}
		if sg.Det.NCell > 1 {
			dv = sg.Det.Cell(c)
		}
		if mtxD.NCell > 1 {
			dm = mtxD.Cell(c)
		}
		if grad.NCell > 1 {
			gr = grad.Cell(c)
		}
		utils.Mul(dgp.Cell(0), dm, gr, false, false)
		utils.Mul(ntdgp.Cell(0), nv, dgp.Cell(0), true, false)
		utils.SumLevelsScaled(out.Cell(c), ntdgp.Cell(0), dv.Slice())
		if mode == FluxMean {
			if sg.Area.NCell > 1 {
				av = sg.Area.Cell(c)
			}
			out.Cell(c).Scale(1.0 / av.Lev(0)[0])
		}
	}
	return nil
}
