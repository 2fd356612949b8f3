// Package drugpage extracts drug details from a pharmacy product page.
package drugpage

// Column names, in output order.
const (
	ColumnDrugName             = "drug_name"
	ColumnMarketer             = "marketer"
	ColumnSaltComposition      = "salt_composition"
	ColumnPrescriptionRequired = "prescription_required"
)

// Record is the set of fields extracted from one product page.
type Record struct {
	DrugName             string `json:"drug_name" yaml:"drug_name"`
	Marketer             string `json:"marketer" yaml:"marketer"`
	SaltComposition      string `json:"salt_composition" yaml:"salt_composition"`
	PrescriptionRequired string `json:"prescription_required" yaml:"prescription_required"`
}

// Header returns the column names for tabular output.
func (r Record) Header() []string {
	return []string{
		ColumnDrugName,
		ColumnMarketer,
		ColumnSaltComposition,
		ColumnPrescriptionRequired,
	}
}

// Row returns the field values in Header order.
func (r Record) Row() []string {
	return []string{
		r.DrugName,
		r.Marketer,
		r.SaltComposition,
		r.PrescriptionRequired,
	}
}
