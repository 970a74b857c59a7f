package domain

import "time"

// Product is one purchasable catalog record. Stock is mutated by admin
// updates and by checkout/cancellation compensation; everything else only
// changes through admin create/update.
type Product struct {
	ID          string
	Name        string
	Description string
	// PriceCents is the unit price in minor currency units.
	PriceCents int64
	Stock      int
	// ImageURL is a signed URL into the blob store; never raw bytes.
	ImageURL  string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants checks the catalog invariants and returns every
// violation found.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceCents < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}
