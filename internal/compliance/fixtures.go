package compliance

import (
	"fmt"
	"time"
)

// FixtureItems returns demo documents whose aggregates match the supplier
// fixtures. Expiry dates are relative to now.
func FixtureItems(now time.Time) []Item {
	now = now.UTC().Truncate(24 * time.Hour)
	in := func(years, months int) *time.Time {
		t := now.AddDate(years, months, 0)
		return &t
	}
	mk := func(n, supplierID int, docType, category, status string, exp *time.Time, notes string) Item {
		return Item{
			ID:           fmt.Sprintf("00000000-0000-4000-8000-%012d", n),
			SupplierID:   supplierID,
			DocumentType: docType,
			Status:       status,
			ExpiresAt:    exp,
			Category:     category,
			LastChecked:  now.AddDate(0, -1, 0),
			Notes:        notes,
		}
	}
	return []Item{
		mk(1, 1, DocCertificate, "Quality", StatusCompliant, in(2, 0), "ISO 9001:2015 certificate"),
		mk(2, 1, DocInsurance, "Financial", StatusCompliant, in(0, 8), "General liability cover"),
		mk(3, 2, DocCertificate, "Quality", StatusCompliant, in(1, 0), "ISO 9001:2015 certificate"),
		mk(4, 2, DocInsurance, "Financial", StatusReview, in(0, 3), "Product liability schedule missing"),
		mk(5, 3, DocCertificate, "Environmental", StatusCompliant, in(1, 6), "FSC chain of custody"),
		mk(6, 3, DocPolicy, "Ethics", StatusCompliant, nil, "Signed code of conduct"),
		mk(7, 4, DocCertificate, "Quality", StatusNonCompliant, in(-1, 0), "ISO 9001:2008 certificate lapsed"),
		mk(8, 4, DocTax, "Legal", StatusCompliant, in(0, 10), "VAT registration"),
		mk(9, 5, DocCertificate, "Quality", StatusCompliant, in(2, 4), "ISO 9001:2015 certificate"),
		mk(10, 6, DocLicense, "Legal", StatusReview, in(0, 2), "Export license renewal pending"),
	}
}
