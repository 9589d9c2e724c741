package terms

import (
	"fmt"

	"github.com/juantresde/feterms/utils"
)

// CouplingMode selects which shape-function space plays the test (row)
// role in a mixed-field coupling block. Resolved once per evaluator call.
type CouplingMode int

const (
	// PrimaryAsTest puts the gradient space G on the rows: (G^T D) B.
	PrimaryAsTest CouplingMode = iota
	// SecondaryAsTest puts the scalar space B on the rows: B^T (G^T D)^T.
	SecondaryAsTest
)

func (m CouplingMode) String() string {
	switch m {
	case PrimaryAsTest:
		return "PrimaryAsTest"
	case SecondaryAsTest:
		return "SecondaryAsTest"
	}
	return fmt.Sprintf("CouplingMode(%d)", int(m))
}

// Connectivity maps (element, local node) to a global degree of freedom.
// Conn is element-major with NEP entries per element.
type Connectivity struct {
	NEP  int
	Conn []int
}

func (cn Connectivity) NumElements() int { return len(cn.Conn) / cn.NEP }

func (cn Connectivity) Dofs(el int) []int {
	return cn.Conn[el*cn.NEP : (el+1)*cn.NEP]
}

// GatherNodalValues extracts the nodal values of a global state vector for
// one element into a freshly owned [1 x 1 x NEP x 1] Field.
func GatherNodalValues(state []float64, conn Connectivity, el int) (*utils.Field, error) {
	if el < 0 || el >= conn.NumElements() {
		return nil, fmt.Errorf("gather: %w: element %d outside connectivity of %d elements",
			ErrShape, el, conn.NumElements())
	}
	st := utils.NewField(1, 1, conn.NEP, 1)
	dst := st.Cell(0).Lev(0)
	for i, dof := range conn.Dofs(el) {
		if dof < 0 || dof >= len(state) {
			return nil, fmt.Errorf("gather: %w: dof %d outside state vector of length %d",
				ErrShape, dof, len(state))
		}
		dst[i] = state[dof]
	}
	return st, nil
}

// checkCouplingArgs validates the pieces shared by the coupling evaluators.
// The coefficient mtxD is a dim x 1 vector, indexed by position in elems
// (not by element number) when spatially varying. bf holds the secondary
// (scalar) space basis values, a 1 x NEPB row per quadrature point.
func checkCouplingArgs(name string, mtxD, bf *utils.Field, vg *VolumeGeometry,
	elems []int) error {
	nEl := len(elems)
	if nEl == 0 {
		return fmt.Errorf("%s: %w: empty element list", name, ErrShape)
	}
	if err := vg.check(name, vg.BfGM.NCell); err != nil {
		return err
	}
	for _, iel := range elems {
		if iel < 0 || (vg.BfGM.NCell > 1 && iel >= vg.BfGM.NCell) {
			return fmt.Errorf("%s: %w: element %d outside geometry of %d cells",
				name, ErrShape, iel, vg.BfGM.NCell)
		}
	}
	if err := checkGradField(name, "coupling coefficient", mtxD, nEl, vg); err != nil {
		return err
	}
	if err := checkCells(name, "secondary basis", bf, nEl); err != nil {
		return err
	}
	if err := checkQP(name, "secondary basis", bf, vg.NQP()); err != nil {
		return err
	}
	if bf.NRow != 1 {
		return fmt.Errorf("%s: %w: secondary basis is %s, want a 1 x n row per quadrature point",
			name, ErrShape, bf)
	}
	return nil
}

// DiffusionCouplingMatrix assembles the mixed-field coupling block between
// the gradient space G and the scalar space B over an explicit element
// subset:
//
//	PrimaryAsTest:   out_e = sum_q w_q * (G_q^T D_q) B_q      (NEP x NEPB)
//	SecondaryAsTest: out_e = sum_q w_q * B_q^T (G_q^T D_q)^T  (NEPB x NEP)
//
// out has one cell per entry of elems. The two spaces need not share cell
// numbering, which is why the subset is always explicit.
func DiffusionCouplingMatrix(out, mtxD, bf *utils.Field, vg *VolumeGeometry,
	elems []int, mode CouplingMode) error {
	const name = "DiffusionCouplingMatrix"
	if err := checkCouplingArgs(name, mtxD, bf, vg, elems); err != nil {
		return err
	}
	var (
		nQP, nEP = vg.NQP(), vg.NEP()
		nEPB     = bf.NCol
		nEl      = len(elems)
	)
	wantR, wantC := nEP, nEPB
	if mode == SecondaryAsTest {
		wantR, wantC = nEPB, nEP
	}
	if out.NCell != nEl || out.NLev != 1 || out.NRow != wantR || out.NCol != wantC {
		return fmt.Errorf("%s: %w: out is %s, want %d cells of %d x %d (%s)",
			name, ErrShape, out, nEl, wantR, wantC, mode)
	}
	var (
		gtd  = utils.NewField(1, nQP, nEP, 1)
		gtdg = utils.NewField(1, nQP, wantR, wantC)
		gv   = vg.BfGM.Cell(0)
		dv   = vg.Det.Cell(0)
		dm   = mtxD.Cell(0)
		bfv  = bf.Cell(0)
	)
	for ii, iel := range elems {
		if vg.BfGM.NCell > 1 {
			gv = vg.BfGM.Cell(iel)
		}
		if vg.Det.NCell > 1 {
			dv = vg.Det.Cell(iel)
		}
		if mtxD.NCell > 1 {
			dm = mtxD.Cell(ii)
		}
		if bf.NCell > 1 {
			bfv = bf.Cell(ii)
		}
		utils.Mul(gtd.Cell(0), gv, dm, true, false)
		if mode == SecondaryAsTest {
			utils.Mul(gtdg.Cell(0), bfv, gtd.Cell(0), true, true)
		} else {
			utils.Mul(gtdg.Cell(0), gtd.Cell(0), bfv, false, false)
		}
		utils.SumLevelsScaled(out.Cell(ii), gtdg.Cell(0), dv.Slice())
	}
	return nil
}

// DiffusionCoupling evaluates the coupling residual: one side of the block
// is replaced by nodal values of a global state vector, gathered per
// element through conn. The gathered side is the trial space:
//
//	PrimaryAsTest:   out_e = sum_q w_q * G_q^T (D_q (B_q st))   (NEP x 1)
//	SecondaryAsTest: out_e = sum_q w_q * B_q^T (D_q^T (G_q st)) (NEPB x 1)
func DiffusionCoupling(out *utils.Field, state []float64, mtxD, bf *utils.Field,
	vg *VolumeGeometry, conn Connectivity, elems []int, mode CouplingMode) error {
	const name = "DiffusionCoupling"
	if err := checkCouplingArgs(name, mtxD, bf, vg, elems); err != nil {
		return err
	}
	var (
		nQP, nEP, dim = vg.NQP(), vg.NEP(), vg.Dim()
		nEPB          = bf.NCol
		nEl           = len(elems)
	)
	wantR, trialN := nEP, nEPB
	if mode == SecondaryAsTest {
		wantR, trialN = nEPB, nEP
	}
	if conn.NEP != trialN {
		return fmt.Errorf("%s: %w: connectivity width %d, want %d trial dofs (%s)",
			name, ErrShape, conn.NEP, trialN, mode)
	}
	if out.NCell != nEl || out.NLev != 1 || out.NRow != wantR || out.NCol != 1 {
		return fmt.Errorf("%s: %w: out is %s, want %d cells of %d x 1 (%s)",
			name, ErrShape, out, nEl, wantR, mode)
	}
	var (
		gp, dgp *utils.Field
		gtdgp   = utils.NewField(1, nQP, wantR, 1)
		gv      = vg.BfGM.Cell(0)
		dv      = vg.Det.Cell(0)
		dm      = mtxD.Cell(0)
		bfv     = bf.Cell(0)
	)
	if mode == SecondaryAsTest {
		gp = utils.NewField(1, nQP, dim, 1)
		dgp = utils.NewField(1, nQP, 1, 1)
	} else {
		gp = utils.NewField(1, nQP, 1, 1)
		dgp = utils.NewField(1, nQP, dim, 1)
	}
	for ii, iel := range elems {
		if vg.BfGM.NCell > 1 {
			gv = vg.BfGM.Cell(iel)
		}
		if vg.Det.NCell > 1 {
			dv = vg.Det.Cell(iel)
		}
		if mtxD.NCell > 1 {
			dm = mtxD.Cell(ii)
		}
		if bf.NCell > 1 {
			bfv = bf.Cell(ii)
		}
		st, err := GatherNodalValues(state, conn, iel)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if mode == SecondaryAsTest {
			utils.Mul(gp.Cell(0), gv, st.Cell(0), false, false)
			utils.Mul(dgp.Cell(0), dm, gp.Cell(0), true, false)
			utils.Mul(gtdgp.Cell(0), bfv, dgp.Cell(0), true, false)
		} else {
			utils.Mul(gp.Cell(0), bfv, st.Cell(0), false, false)
			utils.Mul(dgp.Cell(0), dm, gp.Cell(0), false, false)
			utils.Mul(gtdgp.Cell(0), gv, dgp.Cell(0), true, false)
		}
		utils.SumLevelsScaled(out.Cell(ii), gtdgp.Cell(0), dv.Slice())
	}
	return nil
}

// DiffusionCouplingEval fully reduces the coupling action between two state
// vectors: stateP feeds the trial side exactly as in DiffusionCoupling, and
// the result is contracted against the gathered test-side values of stateQ:
//
//	out_e = sum_q w_q * stQ^T (coupling action on stP)
//
// out is [nEl x 1 x 1 x 1]. Both gathers use conn, so the test and trial
// spaces must share the element nodal layout for this functional.
func DiffusionCouplingEval(out *utils.Field, stateP, stateQ []float64,
	mtxD, bf *utils.Field, vg *VolumeGeometry, conn Connectivity,
	elems []int, mode CouplingMode) error {
	const name = "DiffusionCouplingEval"
	if err := checkCouplingArgs(name, mtxD, bf, vg, elems); err != nil {
		return err
	}
	var (
		nQP, nEP, dim = vg.NQP(), vg.NEP(), vg.Dim()
		nEPB          = bf.NCol
		nEl           = len(elems)
	)
	if conn.NEP != nEP || nEPB != nEP {
		return fmt.Errorf("%s: %w: spaces must share the nodal layout: connectivity width %d, basis widths %d and %d",
			name, ErrShape, conn.NEP, nEP, nEPB)
	}
	if out.NCell != nEl || out.NLev != 1 || out.NRow != 1 || out.NCol != 1 {
		return fmt.Errorf("%s: %w: out is %s, want %d cells of 1 x 1",
			name, ErrShape, out, nEl)
	}
	testN := nEP
	if mode == SecondaryAsTest {
		testN = nEPB
	}
	var (
		gp, dgp *utils.Field
		tdp     = utils.NewField(1, nQP, testN, 1)
		qtp     = utils.NewField(1, nQP, 1, 1)
		gv      = vg.BfGM.Cell(0)
		dv      = vg.Det.Cell(0)
		dm      = mtxD.Cell(0)
		bfv     = bf.Cell(0)
	)
	if mode == SecondaryAsTest {
		gp = utils.NewField(1, nQP, dim, 1)
		dgp = utils.NewField(1, nQP, 1, 1)
	} else {
		gp = utils.NewField(1, nQP, 1, 1)
		dgp = utils.NewField(1, nQP, dim, 1)
	}
	for ii, iel := range elems {
		if vg.BfGM.NCell > 1 {
			gv = vg.BfGM.Cell(iel)
		}
		if vg.Det.NCell > 1 {
			dv = vg.Det.Cell(iel)
		}
		if mtxD.NCell > 1 {
			dm = mtxD.Cell(ii)
		}
		if bf.NCell > 1 {
			bfv = bf.Cell(ii)
		}
		stP, err := GatherNodalValues(stateP, conn, iel)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if mode == SecondaryAsTest {
			utils.Mul(gp.Cell(0), gv, stP.Cell(0), false, false)
			utils.Mul(dgp.Cell(0), dm, gp.Cell(0), true, false)
			utils.Mul(tdp.Cell(0), bfv, dgp.Cell(0), true, false)
		} else {
			utils.Mul(gp.Cell(0), bfv, stP.Cell(0), false, false)
			utils.Mul(dgp.Cell(0), dm, gp.Cell(0), false, false)
			utils.Mul(tdp.Cell(0), gv, dgp.Cell(0), true, false)
		}
		stQ, err := GatherNodalValues(stateQ, conn, iel)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		utils.Mul(qtp.Cell(0), stQ.Cell(0), tdp.Cell(0), true, false)
		utils.SumLevelsScaled(out.Cell(ii), qtp.Cell(0), dv.Slice())
	}
	return nil
}
