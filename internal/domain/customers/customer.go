package customers

import (
	"context"

	"golang.org/x/text/language"

	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/tax"
)

// Customer is the party a request is executed for.
type Customer struct {
	shared.BaseEntity
	Username string
	Email    string
	IsGuest  bool
	IsAdmin  bool
}

// Vendor is a seller in a multi-vendor store.
type Vendor struct {
	shared.BaseEntity
	Name string
}

// WorkContext exposes the per-request working state.
type WorkContext interface {
	CurrentCustomer(ctx context.Context) *Customer
	// CurrentVendor is nil when the customer is not a vendor.
	CurrentVendor(ctx context.Context) *Vendor
	WorkingLanguage(ctx context.Context) language.Tag
	WorkingCurrency(ctx context.Context) (*directory.Currency, error)
	TaxDisplayType(ctx context.Context) tax.DisplayType
	IsAdmin(ctx context.Context) bool
}
