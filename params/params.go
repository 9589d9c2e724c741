package params

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML benchmark case file
type BenchParameters struct {
	Title            string  `yaml:"Title"`
	NumCells         int     `yaml:"NumCells"`
	Dimension        int     `yaml:"Dimension"`
	NodesPerElement  int     `yaml:"NodesPerElement"`
	QuadraturePoints int     `yaml:"QuadraturePoints"`
	Conductivity     float64 `yaml:"Conductivity"`
	Anisotropic      bool    `yaml:"Anisotropic"` // full-tensor diffusivity instead of scalar
	Parallelism      int     `yaml:"Parallelism"`
	Repeats          int     `yaml:"Repeats"`
}

// DefaultBenchParameters is a moderate 3-D tetrahedral case.
func DefaultBenchParameters() *BenchParameters {
	return &BenchParameters{
		Title:            "P1 tetrahedra",
		NumCells:         100000,
		Dimension:        3,
		NodesPerElement:  4,
		QuadraturePoints: 4,
		Conductivity:     1.0,
		Parallelism:      1,
		Repeats:          10,
	}
}

func (bp *BenchParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, bp)
}

func (bp *BenchParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", bp.Title)
	fmt.Printf("%8d\t\t= NumCells\n", bp.NumCells)
	fmt.Printf("[%d]\t\t\t= Dimension\n", bp.Dimension)
	fmt.Printf("[%d]\t\t\t= Nodes Per Element\n", bp.NodesPerElement)
	fmt.Printf("[%d]\t\t\t= Quadrature Points\n", bp.QuadraturePoints)
	fmt.Printf("%8.5f\t\t= Conductivity\n", bp.Conductivity)
	fmt.Printf("[%v]\t\t\t= Anisotropic\n", bp.Anisotropic)
	fmt.Printf("[%d]\t\t\t= Parallelism\n", bp.Parallelism)
	fmt.Printf("[%d]\t\t\t= Repeats\n", bp.Repeats)
}
