package terms

import (
	"fmt"

	"github.com/juantresde/feterms/utils"
)

// checkScalarCoef validates a scalar coefficient field against a batch:
// one or nCell cells, one or nQP levels, 1 x 1 entries.
func checkScalarCoef(name string, coef *utils.Field, nCell, nQP int) error {
	if err := checkCells(name, "coefficient", coef, nCell); err != nil {
		return err
	}
	if err := checkQP(name, "coefficient", coef, nQP); err != nil {
		return err
	}
	if coef.NRow != 1 || coef.NCol != 1 {
		return fmt.Errorf("%s: %w: scalar coefficient is %s", name, ErrShape, coef)
	}
	return nil
}

// copyLevels copies src into dst level by level, broadcasting a one-level
// src across all of dst's levels.
func copyLevels(dst, src utils.View) {
	nQP := dst.F.NLev
	for q := 0; q < nQP; q++ {
		copy(dst.Lev(q), src.LevN(q, nQP))
	}
}

// LaplaceMatrix assembles the local Laplace stiffness matrix per cell:
//
//	out_c = sum_q w_q * coef_q * G_q^T G_q
//
// out is [NCell x 1 x NEP x NEP] and fully overwritten. coef is a scalar
// coefficient field, broadcast across cells and/or quadrature points when
// it carries a single cell and/or level.
func LaplaceMatrix(out, coef *utils.Field, vg *VolumeGeometry) error {
	const name = "LaplaceMatrix"
	nCell := out.NCell
	if err := vg.check(name, nCell); err != nil {
		return err
	}
	if err := checkScalarCoef(name, coef, nCell, vg.NQP()); err != nil {
		return err
	}
	var (
		nQP, nEP = vg.NQP(), vg.NEP()
	)
	if out.NLev != 1 || out.NRow != nEP || out.NCol != nEP {
		return fmt.Errorf("%s: %w: out is %s, want %d x %d per cell",
			name, ErrShape, out, nEP, nEP)
	}
	var (
		gtg = utils.NewField(1, nQP, nEP, nEP)
		scr = gtg.Cell(0)
		gv  = vg.BfGM.Cell(0)
		dv  = vg.Det.Cell(0)
		cf  = coef.Cell(0)
	)
	for c := 0; c < nCell; c++ {
		if vg.BfGM.NCell > 1 {
			gv = vg.BfGM.Cell(c)
		}
		if vg.Det.NCell > 1 {
			dv = vg.Det.Cell(c)
		}
		if coef.NCell > 1 {
			cf = coef.Cell(c)
		}
		if err := buildGradGramian(scr, gv); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		scr.ScaleLevels(cf.Slice())
		utils.SumLevelsScaled(out.Cell(c), scr, dv.Slice())
	}
	return nil
}

// Laplace evaluates the Laplace operator's action on a supplied gradient
// field, producing the local residual vector per cell:
//
//	out_c = sum_q w_q * coef_q * G_q^T grad_q
//
// out is [NCell x 1 x NEP x 1]; grad is [cells x NQP x dim x 1].
func Laplace(out, grad, coef *utils.Field, vg *VolumeGeometry) error {
	const name = "Laplace"
	nCell := out.NCell
	if err := vg.check(name, nCell); err != nil {
		return err
	}
	if err := checkScalarCoef(name, coef, nCell, vg.NQP()); err != nil {
		return err
	}
	if err := checkGradField(name, "gradient", grad, nCell, vg); err != nil {
		return err
	}
	var (
		nQP, nEP = vg.NQP(), vg.NEP()
	)
	if out.NLev != 1 || out.NRow != nEP || out.NCol != 1 {
		return fmt.Errorf("%s: %w: out is %s, want %d x 1 per cell",
			name, ErrShape, out, nEP)
	}
	var (
		gtgu = utils.NewField(1, nQP, nEP, 1)
		scr  = gtgu.Cell(0)
		gv   = vg.BfGM.Cell(0)
		dv   = vg.Det.Cell(0)
		cf   = coef.Cell(0)
		gr   = grad.Cell(0)
	)
	for c := 0; c < nCell; c++ {
		if vg.BfGM.NCell > 1 {
			gv = vg.BfGM.Cell(c)
		}
		if vg.Det.NCell > 1 {
			dv = vg.Det.Cell(c)
		}
		if coef.NCell > 1 {
			cf = coef.Cell(c)
		}
		if grad.NCell > 1 {
			gr = grad.Cell(c)
		}
		if err := applyGradTranspose(scr, gv, gr); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		scr.ScaleLevels(cf.Slice())
		utils.SumLevelsScaled(out.Cell(c), scr, dv.Slice())
	}
	return nil
}

// LaplaceEval evaluates the Laplace bilinear functional of two gradient
// fields without assembling a matrix:
//
//	out_c = sum_q w_q * coef_q * (gradP1_q . gradP2_q)
//
// out is [NCell x 1 x 1 x 1], one scalar per cell.
func LaplaceEval(out, gradP1, gradP2, coef *utils.Field, vg *VolumeGeometry) error {
	const name = "LaplaceEval"
	nCell := out.NCell
	if err := vg.check(name, nCell); err != nil {
		return err
	}
	if err := checkScalarCoef(name, coef, nCell, vg.NQP()); err != nil {
		return err
	}
	if err := checkGradField(name, "gradP1", gradP1, nCell, vg); err != nil {
		return err
	}
	if err := checkGradField(name, "gradP2", gradP2, nCell, vg); err != nil {
		return err
	}
	var (
		nQP, dim = vg.NQP(), vg.Dim()
	)
	if out.NLev != 1 || out.NRow != 1 || out.NCol != 1 {
		return fmt.Errorf("%s: %w: out is %s, want 1 x 1 per cell",
			name, ErrShape, out)
	}
	var (
		dgp2     = utils.NewField(1, nQP, dim, 1)
		gp1tdgp2 = utils.NewField(1, nQP, 1, 1)
		dv       = vg.Det.Cell(0)
		cf       = coef.Cell(0)
		g1       = gradP1.Cell(0)
		g2       = gradP2.Cell(0)
	)
	for c := 0; c < nCell; c++ {
		if vg.Det.NCell > 1 {
			dv = vg.Det.Cell(c)
		}
		if coef.NCell > 1 {
			cf = coef.Cell(c)
		}
		if gradP1.NCell > 1 {
			g1 = gradP1.Cell(c)
		}
		if gradP2.NCell > 1 {
			g2 = gradP2.Cell(c)
		}
		copyLevels(dgp2.Cell(0), g2)
		dgp2.Cell(0).ScaleLevels(cf.Slice())
		utils.Mul(gp1tdgp2.Cell(0), g1, dgp2.Cell(0), true, false)
		utils.SumLevelsScaled(out.Cell(c), gp1tdgp2.Cell(0), dv.Slice())
	}
	return nil
}

// checkGradField validates a gradient field: dim x 1 entries, one or NQP
// levels, one or nCell cells.
func checkGradField(name, label string, grad *utils.Field, nCell int, vg *VolumeGeometry) error {
	if err := checkCells(name, label, grad, nCell); err != nil {
		return err
	}
	if err := checkQP(name, label, grad, vg.NQP()); err != nil {
		return err
	}
	if grad.NRow != vg.Dim() || grad.NCol != 1 {
		return fmt.Errorf("%s: %w: %s is %s, want %d x 1 per quadrature point",
			name, ErrShape, label, grad, vg.Dim())
	}
	return nil
}
