package terms

import (
	"fmt"

	"github.com/juantresde/feterms/utils"
)

// VolumeGeometry carries the per-cell quadrature data the surrounding
// framework precomputes for volume integrals.
type VolumeGeometry struct {
	// Gradients of the basis functions in physical coordinates
	// Dimension: [NCell x NQP x dim x NEP] where:
	//   - NQP: quadrature points per cell
	//   - dim: spatial dimension, 2 or 3
	//   - NEP: local degrees of freedom (basis functions) per cell
	BfGM *utils.Field

	// Jacobian determinant times quadrature weight, [NCell x NQP x 1 x 1]
	// Used for integration: sum_q Det_q * f_q approximates the cell integral
	Det *utils.Field
}

func (vg *VolumeGeometry) NQP() int { return vg.BfGM.NLev }
func (vg *VolumeGeometry) NEP() int { return vg.BfGM.NCol }
func (vg *VolumeGeometry) Dim() int { return vg.BfGM.NRow }

// SurfaceGeometry is the facet counterpart, used by boundary flux terms.
type SurfaceGeometry struct {
	// Unit outward normals at facet quadrature points, [NCell x NQP x dim x 1]
	Normal *utils.Field

	// Facet Jacobian determinant times quadrature weight, [NCell x NQP x 1 x 1]
	Det *utils.Field

	// Facet area per cell, [NCell x 1 x 1 x 1]; used only for mean-flux scaling
	Area *utils.Field
}

func (sg *SurfaceGeometry) NQP() int { return sg.Normal.NLev }
func (sg *SurfaceGeometry) Dim() int { return sg.Normal.NRow }

// check validates the geometry against the batch size of an evaluator call.
// A geometry with a single cell broadcasts to the whole batch.
func (vg *VolumeGeometry) check(name string, nCell int) error {
	if vg.BfGM == nil || vg.Det == nil {
		return fmt.Errorf("%s: %w: volume geometry incomplete", name, ErrShape)
	}
	if d := vg.Dim(); d != 2 && d != 3 {
		return fmt.Errorf("%s: %w: dim=%d", name, ErrDimension, d)
	}
	if err := checkCells(name, "geometry gradients", vg.BfGM, nCell); err != nil {
		return err
	}
	if err := checkCells(name, "geometry determinants", vg.Det, nCell); err != nil {
		return err
	}
	if vg.Det.NLev != vg.NQP() || vg.Det.NRow != 1 || vg.Det.NCol != 1 {
		return fmt.Errorf("%s: %w: determinants are %s for %d quadrature points",
			name, ErrShape, vg.Det, vg.NQP())
	}
	return nil
}

func (sg *SurfaceGeometry) check(name string, nCell int) error {
	if sg.Normal == nil || sg.Det == nil || sg.Area == nil {
		return fmt.Errorf("%s: %w: surface geometry incomplete", name, ErrShape)
	}
	if d := sg.Dim(); d != 2 && d != 3 {
		return fmt.Errorf("%s: %w: dim=%d", name, ErrDimension, d)
	}
	if sg.Normal.NCol != 1 {
		return fmt.Errorf("%s: %w: normals are %s", name, ErrShape, sg.Normal)
	}
	if err := checkCells(name, "surface normals", sg.Normal, nCell); err != nil {
		return err
	}
	if err := checkCells(name, "surface determinants", sg.Det, nCell); err != nil {
		return err
	}
	if err := checkCells(name, "facet areas", sg.Area, nCell); err != nil {
		return err
	}
	if sg.Area.NLev != 1 || sg.Area.NRow != 1 || sg.Area.NCol != 1 {
		return fmt.Errorf("%s: %w: facet areas are %s, want one scalar per cell",
			name, ErrShape, sg.Area)
	}
	if sg.Det.NLev != sg.NQP() || sg.Det.NRow != 1 || sg.Det.NCol != 1 {
		return fmt.Errorf("%s: %w: surface determinants are %s for %d quadrature points",
			name, ErrShape, sg.Det, sg.NQP())
	}
	return nil
}

// checkCells enforces the cell-broadcast contract: a field participating in
// a batch of nCell cells carries either exactly one cell or nCell cells.
func checkCells(name, label string, f *utils.Field, nCell int) error {
	if f.NCell != 1 && f.NCell != nCell {
		return fmt.Errorf("%s: %w: %s has %d cells for a batch of %d",
			name, ErrShape, label, f.NCell, nCell)
	}
	return nil
}

// checkQP enforces the quadrature contract: a field evaluated alongside nQP
// quadrature points carries either one level (per-cell data) or nQP levels.
func checkQP(name, label string, f *utils.Field, nQP int) error {
	if f.NLev != 1 && f.NLev != nQP {
		return fmt.Errorf("%s: %w: %s has %d levels for %d quadrature points",
			name, ErrShape, label, f.NLev, nQP)
	}
	return nil
}
