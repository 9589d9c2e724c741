package terms

import (
	"fmt"

	"github.com/juantresde/feterms/utils"
)

// checkTensorCoef validates a dim x dim diffusivity tensor field.
func checkTensorCoef(name string, mtxD *utils.Field, nCell int, vg *VolumeGeometry) error {
	if err := checkCells(name, "diffusivity", mtxD, nCell); err != nil {
		return err
	}
	if err := checkQP(name, "diffusivity", mtxD, vg.NQP()); err != nil {
		return err
	}
	if mtxD.NRow != vg.Dim() || mtxD.NCol != vg.Dim() {
		return fmt.Errorf("%s: %w: diffusivity is %s, want %d x %d per quadrature point",
			name, ErrShape, mtxD, vg.Dim(), vg.Dim())
	}
	return nil
}

// DiffusionMatrix assembles the local stiffness matrix of the generalized
// diffusion term with a full tensor diffusivity D:
//
//	out_c = sum_q w_q * G_q^T D_q G_q
//
// out is [NCell x 1 x NEP x NEP].
func DiffusionMatrix(out, mtxD *utils.Field, vg *VolumeGeometry) error {
	const name = "DiffusionMatrix"
	nCell := out.NCell
	if err := vg.check(name, nCell); err != nil {
		return err
	}
	if err := checkTensorCoef(name, mtxD, nCell, vg); err != nil {
		return err
	}
	var (
		nQP, nEP, dim = vg.NQP(), vg.NEP(), vg.Dim()
	)
	if out.NLev != 1 || out.NRow != nEP || out.NCol != nEP {
		return fmt.Errorf("%s: %w: out is %s, want %d x %d per cell",
			name, ErrShape, out, nEP, nEP)
	}
	var (
		gtd  = utils.NewField(1, nQP, nEP, dim)
		gtdg = utils.NewField(1, nQP, nEP, nEP)
		gv   = vg.BfGM.Cell(0)
		dv   = vg.Det.Cell(0)
		dm   = mtxD.Cell(0)
	)
	for c := 0; c < nCell; c++ {
		if vg.BfGM.NCell > 1 {
			gv = vg.BfGM.Cell(c)
		}
		if vg.Det.NCell > 1 {
			dv = vg.Det.Cell(c)
		}
		if mtxD.NCell > 1 {
			dm = mtxD.Cell(c)
		}
		utils.Mul(gtd.Cell(0), gv, dm, true, false)
		utils.Mul(gtdg.Cell(0), gtd.Cell(0), gv, false, false)
		utils.SumLevelsScaled(out.Cell(c), gtdg.Cell(0), dv.Slice())
	}
	return nil
}

// Diffusion evaluates the tensor-diffusion operator's action on a supplied
// gradient field, producing the local residual vector per cell:
//
//	out_c = sum_q w_q * G_q^T (D_q grad_q)
func Diffusion(out, grad, mtxD *utils.Field, vg *VolumeGeometry) error {
	const name = "Diffusion"
	nCell := out.NCell
	if err := vg.check(name, nCell); err != nil {
		return err
	}
	if err := checkTensorCoef(name, mtxD, nCell, vg); err != nil {
		return err
	}
	if err := checkGradField(name, "gradient", grad, nCell, vg); err != nil {
		return err
	}
	var (
		nQP, nEP, dim = vg.NQP(), vg.NEP(), vg.Dim()
	)
	if out.NLev != 1 || out.NRow != nEP || out.NCol != 1 {
		return fmt.Errorf("%s: %w: out is %s, want %d x 1 per cell",
			name, ErrShape, out, nEP)
	}
	var (
		dgp   = utils.NewField(1, nQP, dim, 1)
		gtdgp = utils.NewField(1, nQP, nEP, 1)
		gv    = vg.BfGM.Cell(0)
		dv    = vg.Det.Cell(0)
		dm    = mtxD.Cell(0)
		gr    = grad.Cell(0)
	)
	for c := 0; c < nCell; c++ {
		if vg.BfGM.NCell > 1 {
			gv = vg.BfGM.Cell(c)
		}
		if vg.Det.NCell > 1 {
			dv = vg.Det.Cell(c)
		}
		if mtxD.NCell > 1 {
			dm = mtxD.Cell(c)
		}
		if grad.NCell > 1 {
			gr = grad.Cell(c)
		}
		utils.Mul(dgp.Cell(0), dm, gr, false, false)
		utils.Mul(gtdgp.Cell(0), gv, dgp.Cell(0), true, false)
		utils.SumLevelsScaled(out.Cell(c), gtdgp.Cell(0), dv.Slice())
	}
	return nil
}

// DiffusionEval evaluates the diffusion bilinear functional of two gradient
// fields:
//
//	out_c = sum_q w_q * gradP1_q^T D_q gradP2_q
//
// out is [NCell x 1 x 1 x 1], one scalar per cell.
func DiffusionEval(out, gradP1, gradP2, mtxD *utils.Field, vg *VolumeGeometry) error {
	const name = "DiffusionEval"
	nCell := out.NCell
	if err := vg.check(name, nCell); err != nil {
		return err
	}
	if err := checkTensorCoef(name, mtxD, nCell, vg); err != nil {
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
		dm       = mtxD.Cell(0)
		g1       = gradP1.Cell(0)
		g2       = gradP2.Cell(0)
	)
	for c := 0; c < nCell; c++ {
		if vg.Det.NCell > 1 {
			dv = vg.Det.Cell(c)
		}
		if mtxD.NCell > 1 {
			dm = mtxD.Cell(c)
		}
		if gradP1.NCell > 1 {
			g1 = gradP1.Cell(c)
		}
		if gradP2.NCell > 1 {
			g2 = gradP2.Cell(c)
		}
		utils.Mul(dgp2.Cell(0), dm, g2, false, false)
		utils.Mul(gp1tdgp2.Cell(0), g1, dgp2.Cell(0), true, false)
		utils.SumLevelsScaled(out.Cell(c), gp1tdgp2.Cell(0), dv.Slice())
	}
	return nil
}

// PermeabilitySource reduces G^T applied to a given dim x 1 vector field
// over quadrature:
//
//	out_c = sum_q w_q * G_q^T D_q
//
// out is [NCell x 1 x NEP x 1]. The contract is exactly this contraction;
// no particular PDE derivation of D is assumed.
func PermeabilitySource(out, mtxD *utils.Field, vg *VolumeGeometry) error {
	const name = "PermeabilitySource"
	nCell := out.NCell
	if err := vg.check(name, nCell); err != nil {
		return err
	}
	if err := checkGradField(name, "source vector", mtxD, nCell, vg); err != nil {
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
		gtd = utils.NewField(1, nQP, nEP, 1)
		gv  = vg.BfGM.Cell(0)
		dv  = vg.Det.Cell(0)
		dm  = mtxD.Cell(0)
	)
	for c := 0; c < nCell; c++ {
		if vg.BfGM.NCell > 1 {
			gv = vg.BfGM.Cell(c)
		}
		if vg.Det.NCell > 1 {
			dv = vg.Det.Cell(c)
		}
		if mtxD.NCell > 1 {
			dm = mtxD.Cell(c)
		}
		utils.Mul(gtd.Cell(0), gv, dm, true, false)
		utils.SumLevelsScaled(out.Cell(c), gtd.Cell(0), dv.Slice())
	}
	return nil
}
