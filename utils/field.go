package utils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Field is a batch of small dense matrices: one NRow x NCol matrix per
// (cell, level) pair, where a level is one quadrature point. Storage is a
// single contiguous slice, row-major within a level, levels contiguous
// within a cell:
//
//	Data[((c*NLev+q)*NRow+i)*NCol+j]
//
// A coefficient or field given once per cell instead of once per
// quadrature point is represented with NLev == 1 and broadcast by the
// level-indexed accessors; a spatially constant coefficient has NCell == 1
// and is broadcast by the cell loops of the term evaluators.
type Field struct {
	NCell, NLev, NRow, NCol int
	Data                    []float64
}

func NewField(nCell, nLev, nRow, nCol int) (f *Field) {
	if nCell < 1 || nLev < 1 || nRow < 1 || nCol < 1 {
		err := fmt.Errorf("invalid Field dims: %d x %d x %d x %d",
			nCell, nLev, nRow, nCol)
		panic(err)
	}
	f = &Field{
		NCell: nCell,
		NLev:  nLev,
		NRow:  nRow,
		NCol:  nCol,
		Data:  make([]float64, nCell*nLev*nRow*nCol),
	}
	return
}

// NewFieldData wraps an existing backing slice without copying.
func NewFieldData(nCell, nLev, nRow, nCol int, data []float64) (f *Field) {
	if len(data) != nCell*nLev*nRow*nCol {
		err := fmt.Errorf("mismatch in allocation: NewFieldData dims = %d x %d x %d x %d, len(data) = %d",
			nCell, nLev, nRow, nCol, len(data))
		panic(err)
	}
	f = &Field{
		NCell: nCell,
		NLev:  nLev,
		NRow:  nRow,
		NCol:  nCol,
		Data:  data,
	}
	return
}

func (f *Field) LevSize() int  { return f.NRow * f.NCol }
func (f *Field) CellSize() int { return f.NLev * f.NRow * f.NCol }

// Cell returns a View addressing cell c. The view aliases the Field's
// storage and must not outlive it.
func (f *Field) Cell(c int) View {
	if c < 0 || c >= f.NCell {
		err := fmt.Errorf("cell index %d out of range [0,%d)", c, f.NCell)
		panic(err)
	}
	return View{F: f, C: c}
}

// Window returns a Field header aliasing cells [lo,hi) of f. Used to hand
// disjoint cell ranges to parallel workers; the window shares f's storage.
func (f *Field) Window(lo, hi int) (w *Field) {
	if lo < 0 || hi > f.NCell || lo >= hi {
		err := fmt.Errorf("window [%d,%d) out of range [0,%d)", lo, hi, f.NCell)
		panic(err)
	}
	cs := f.CellSize()
	w = &Field{
		NCell: hi - lo,
		NLev:  f.NLev,
		NRow:  f.NRow,
		NCol:  f.NCol,
		Data:  f.Data[lo*cs : hi*cs],
	}
	return
}

func (f *Field) String() (s string) {
	s = fmt.Sprintf("Field[%d cells, %d levels, %d x %d]",
		f.NCell, f.NLev, f.NRow, f.NCol)
	return
}

// View addresses one cell of a Field. It replaces offset-pointer cursoring:
// repositioning is rebinding a View, never arithmetic on the backing slice.
type View struct {
	F *Field
	C int
}

// Slice returns the whole cell's storage: NLev*NRow*NCol values.
func (v View) Slice() []float64 {
	cs := v.F.CellSize()
	return v.F.Data[v.C*cs : (v.C+1)*cs]
}

// Lev returns the row-major storage of level q of the cell.
func (v View) Lev(q int) []float64 {
	if q < 0 || q >= v.F.NLev {
		err := fmt.Errorf("level index %d out of range [0,%d)", q, v.F.NLev)
		panic(err)
	}
	ls := v.F.LevSize()
	s := v.Slice()
	return s[q*ls : (q+1)*ls]
}

// LevN is Lev under the level-broadcast rule: when the view's level count
// does not match the caller's quadrature count nQP, level 0 stands in for
// every level (a per-cell quantity reused at each quadrature point).
func (v View) LevN(q, nQP int) []float64 {
	if v.F.NLev != nQP {
		return v.Lev(0)
	}
	return v.Lev(q)
}

// Mat wraps level q as a gonum Dense without copying.
func (v View) Mat(q int) *mat.Dense {
	return mat.NewDense(v.F.NRow, v.F.NCol, v.Lev(q))
}

// MatN is Mat under the level-broadcast rule of LevN.
func (v View) MatN(q, nQP int) *mat.Dense {
	return mat.NewDense(v.F.NRow, v.F.NCol, v.LevN(q, nQP))
}

func (v View) Fill(val float64) View {
	s := v.Slice()
	for i := range s {
		s[i] = val
	}
	return v
}

func (v View) Scale(c float64) View {
	s := v.Slice()
	for i := range s {
		s[i] *= c
	}
	return v
}

// ScaleLevels multiplies level q by w[q]. A single weight broadcasts to
// every level; any other length mismatch is a programming error.
func (v View) ScaleLevels(w []float64) View {
	switch len(w) {
	case 1:
		v.Scale(w[0])
	case v.F.NLev:
		ls := v.F.LevSize()
		s := v.Slice()
		for q, wq := range w {
			sq := s[q*ls : (q+1)*ls]
			for i := range sq {
				sq[i] *= wq
			}
		}
	default:
		err := fmt.Errorf("ScaleLevels: %d weights for %d levels", len(w), v.F.NLev)
		panic(err)
	}
	return v
}

// CopyFrom copies src's cell storage into v. Shapes must match exactly.
func (v View) CopyFrom(src View) View {
	d, s := v.Slice(), src.Slice()
	if len(d) != len(s) {
		err := fmt.Errorf("CopyFrom: cell sizes %d and %d differ", len(d), len(s))
		panic(err)
	}
	copy(d, s)
	return v
}

// Mul computes, for every level q of out, the matrix product of the level
// slices of a and b with optional transposes:
//
//	out_q = op(a_q) * op(b_q)
//
// Operands whose level count differs from out's are level-broadcast per
// LevN. Shape incompatibility is a programming error and panics (via the
// underlying gonum multiply).
func Mul(out, a, b View, transA, transB bool) {
	nQP := out.F.NLev
	for q := 0; q < nQP; q++ {
		var am, bm mat.Matrix
		am = a.MatN(q, nQP)
		bm = b.MatN(q, nQP)
		if transA {
			am = am.T()
		}
		if transB {
			bm = bm.T()
		}
		o := out.Mat(q)
		o.Mul(am, bm)
	}
}

// SumLevelsScaled overwrites the single-level view out with the weighted
// sum over levels of in:
//
//	out = sum_q w[q] * in_q
//
// This is the quadrature reduction; w carries the Jacobian-determinant
// weights of one cell.
func SumLevelsScaled(out, in View, w []float64) {
	if out.F.NLev != 1 {
		err := fmt.Errorf("SumLevelsScaled: out has %d levels, want 1", out.F.NLev)
		panic(err)
	}
	if len(w) != in.F.NLev {
		err := fmt.Errorf("SumLevelsScaled: %d weights for %d levels", len(w), in.F.NLev)
		panic(err)
	}
	ls := out.F.LevSize()
	if ls != in.F.LevSize() {
		err := fmt.Errorf("SumLevelsScaled: level sizes %d and %d differ",
			ls, in.F.LevSize())
		panic(err)
	}
	o := out.Lev(0)
	for i := range o {
		o[i] = 0
	}
	s := in.Slice()
	for q, wq := range w {
		sq := s[q*ls : (q+1)*ls]
		for i, val := range sq {
			o[i] += wq * val
		}
	}
}
