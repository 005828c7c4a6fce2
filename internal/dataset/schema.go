package dataset

import "strings"

// Kind is the declared storage type of a column.
type Kind int

const (
	KindCategorical Kind = iota
	KindNumeric
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	default:
		return "categorical"
	}
}

// Column declares one schema column.
type Column struct {
	Name     string
	Kind     Kind
	Required bool
}

// Schema is an ordered, static column-to-kind mapping. Index names the date
// column used as the row index; it is not stored as a Series.
type Schema struct {
	Index   string
	Columns []Column
}

// Sales column names referenced by the analysis steps.
const (
	ColInvoiceID    = "Invoice ID"
	ColBranch       = "Branch"
	ColCity         = "City"
	ColCustomerType = "Customer type"
	ColGender       = "Gender"
	ColProductLine  = "Product line"
	ColUnitPrice    = "Unit price"
	ColQuantity     = "Quantity"
	ColTax          = "Tax 5%"
	ColTotal        = "Total"
	ColDate         = "Date"
	ColTime         = "Time"
	ColPayment      = "Payment"
	ColCogs         = "cogs"
	ColGrossMargin  = "gross margin percentage"
	ColGrossIncome  = "gross income"
	ColRating       = "Rating"
)

// SalesSchema returns the supermarket sales schema in source file order.
func SalesSchema() Schema {
	return Schema{
		Index: ColDate,
		Columns: []Column{
			{Name: ColInvoiceID, Kind: KindCategorical},
			{Name: ColBranch, Kind: KindCategorical, Required: true},
			{Name: ColCity, Kind: KindCategorical},
			{Name: ColCustomerType, Kind: KindCategorical},
			{Name: ColGender, Kind: KindCategorical},
			{Name: ColProductLine, Kind: KindCategorical},
			{Name: ColUnitPrice, Kind: KindNumeric, Required: true},
			{Name: ColQuantity, Kind: KindNumeric, Required: true},
			{Name: ColTax, Kind: KindNumeric, Required: true},
			{Name: ColTotal, Kind: KindNumeric, Required: true},
			{Name: ColDate, Kind: KindDate, Required: true},
			{Name: ColTime, Kind: KindCategorical},
			{Name: ColPayment, Kind: KindCategorical, Required: true},
			{Name: ColCogs, Kind: KindNumeric, Required: true},
			{Name: ColGrossMargin, Kind: KindNumeric, Required: true},
			{Name: ColGrossIncome, Kind: KindNumeric, Required: true},
			{Name: ColRating, Kind: KindNumeric, Required: true},
		},
	}
}

// Lookup finds a column by name. Matching ignores surrounding whitespace and case.
func (s Schema) Lookup(name string) (Column, bool) {
	key := normalizeName(name)
	for _, c := range s.Columns {
		if normalizeName(c.Name) == key {
			return c, true
		}
	}
	return Column{}, false
}

// Required lists the names of required columns.
func (s Schema) Required() []string {
	var out []string
	for _, c := range s.Columns {
		if c.Required {
			out = append(out, c.Name)
		}
	}
	return out
}

func normalizeName(s string) string {
	// strip a UTF-8 BOM that spreadsheet exports put on the first header cell
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.TrimSpace(s))
}
