package terms

import (
	"fmt"

	"github.com/juantresde/feterms/utils"
)

// The inner kernels below are hand-specialized to the 2-D/3-D gradient
// layout. They index raw level slices instead of going through the generic
// product primitive: the operand shapes (2 x NEP, 3 x NEP) are too small
// for a general multiply to pay off at one call per quadrature point.

// buildGradGramian computes, per quadrature point, the NEP x NEP gramian of
// the basis-gradient matrix:
//
//	out_q[i,j] = sum_d G_q[d,i] * G_q[d,j]
//
// The output is untouched when the spatial dimension is not 2 or 3.
func buildGradGramian(out, g utils.View) error {
	var (
		nEP = g.F.NCol
		nQP = g.F.NLev
	)
	switch g.F.NRow {
	case 3:
		for q := 0; q < nQP; q++ {
			gq := g.Lev(q)
			g1, g2, g3 := gq[:nEP], gq[nEP:2*nEP], gq[2*nEP:]
			oq := out.Lev(q)
			for i := 0; i < nEP; i++ {
				row := oq[i*nEP : (i+1)*nEP]
				for j := range row {
					row[j] = g1[i]*g1[j] + g2[i]*g2[j] + g3[i]*g3[j]
				}
			}
		}
	case 2:
		for q := 0; q < nQP; q++ {
			gq := g.Lev(q)
			g1, g2 := gq[:nEP], gq[nEP:]
			oq := out.Lev(q)
			for i := 0; i < nEP; i++ {
				row := oq[i*nEP : (i+1)*nEP]
				for j := range row {
					row[j] = g1[i]*g1[j] + g2[i]*g2[j]
				}
			}
		}
	default:
		return fmt.Errorf("gradient gramian: %w: dim=%d", ErrDimension, g.F.NRow)
	}
	return nil
}

// applyGradLeft computes out_q = G_q * M, where M is an NEP x nCol matrix
// given either per quadrature point or once per cell (level broadcast).
// Result shape is dim x nCol per quadrature point.
func applyGradLeft(out, g, m utils.View) error {
	var (
		nEP  = g.F.NCol
		nQP  = g.F.NLev
		nCol = m.F.NCol
	)
	switch g.F.NRow {
	case 3:
		for q := 0; q < nQP; q++ {
			gq := g.Lev(q)
			g1, g2, g3 := gq[:nEP], gq[nEP:2*nEP], gq[2*nEP:]
			mq := m.LevN(q, nQP)
			oq := out.Lev(q)
			for c := 0; c < nCol; c++ {
				var v1, v2, v3 float64
				for k := 0; k < nEP; k++ {
					mv := mq[c+nCol*k]
					v1 += g1[k] * mv
					v2 += g2[k] * mv
					v3 += g3[k] * mv
				}
				oq[c] = v1
				oq[c+nCol] = v2
				oq[c+2*nCol] = v3
			}
		}
	case 2:
		for q := 0; q < nQP; q++ {
			gq := g.Lev(q)
			g1, g2 := gq[:nEP], gq[nEP:]
			mq := m.LevN(q, nQP)
			oq := out.Lev(q)
			for c := 0; c < nCol; c++ {
				var v1, v2 float64
				for k := 0; k < nEP; k++ {
					mv := mq[c+nCol*k]
					v1 += g1[k] * mv
					v2 += g2[k] * mv
				}
				oq[c] = v1
				oq[c+nCol] = v2
			}
		}
	default:
		return fmt.Errorf("gradient action: %w: dim=%d", ErrDimension, g.F.NRow)
	}
	return nil
}

// applyGradTranspose computes out_q = G_q^T * M_q, with M a dim x nCol
// matrix per quadrature point. Result shape is NEP x nCol.
func applyGradTranspose(out, g, m utils.View) error {
	var (
		nEP  = g.F.NCol
		nQP  = g.F.NLev
		nCol = m.F.NCol
	)
	switch g.F.NRow {
	case 3:
		for q := 0; q < nQP; q++ {
			gq := g.Lev(q)
			g1, g2, g3 := gq[:nEP], gq[nEP:2*nEP], gq[2*nEP:]
			mq := m.LevN(q, nQP)
			oq := out.Lev(q)
			for i := 0; i < nEP; i++ {
				row := oq[i*nCol : (i+1)*nCol]
				for c := range row {
					row[c] = g1[i]*mq[c] + g2[i]*mq[c+nCol] + g3[i]*mq[c+2*nCol]
				}
			}
		}
	case 2:
		for q := 0; q < nQP; q++ {
			gq := g.Lev(q)
			g1, g2 := gq[:nEP], gq[nEP:]
			mq := m.LevN(q, nQP)
			oq := out.Lev(q)
			for i := 0; i < nEP; i++ {
				row := oq[i*nCol : (i+1)*nCol]
				for c := range row {
					row[c] = g1[i]*mq[c] + g2[i]*mq[c+nCol]
				}
			}
		}
	default:
		return fmt.Errorf("gradient transpose action: %w: dim=%d", ErrDimension, g.F.NRow)
	}
	return nil
}
