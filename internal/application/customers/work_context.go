package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	appdirectory "github.com/storefront/backend/internal/application/directory"
	"github.com/storefront/backend/internal/domain/customers"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/stores"
	"github.com/storefront/backend/internal/domain/tax"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/webcontext"
)

// CurrencyQueryParam selects the working currency
const CurrencyQueryParam = "currency"

// GuestUsername is the username of the anonymous customer
const GuestUsername = "guest"

// WorkContext resolves the customer, language and currency of a request
type WorkContext struct {
	stores         stores.StoreContext
	currencies     *appdirectory.CurrencyService
	supported      []language.Tag
	matcher        language.Matcher
	primaryCode    string
	taxDisplayType tax.DisplayType
	logger         *zap.Logger
}

// NewWorkContext creates a WorkContext. Unparsable language tags in the
// configuration are skipped; the default language is always supported.
func NewWorkContext(
	storeContext stores.StoreContext,
	currencies *appdirectory.CurrencyService,
	cfg *config.Config,
	logger *zap.Logger,
) *WorkContext {
	if logger == nil {
		logger = zap.NewNop()
	}

	defaultTag, err := language.Parse(cfg.Localization.DefaultLanguage)
	if err != nil {
		logger.Warn("Invalid default language, using en-US", zap.String("language", cfg.Localization.DefaultLanguage))
		defaultTag = language.AmericanEnglish
	}
	supported := []language.Tag{defaultTag}
	for _, s := range cfg.Localization.SupportedLanguages {
		tag, err := language.Parse(s)
		if err != nil {
			logger.Warn("Skipping invalid supported language", zap.String("language", s))
			continue
		}
		if tag != defaultTag {
			supported = append(supported, tag)
		}
	}

	return &WorkContext{
		stores:         storeContext,
		currencies:     currencies,
		supported:      supported,
		matcher:        language.NewMatcher(supported),
		primaryCode:    cfg.Plugins.PrimaryCurrencyCode,
		taxDisplayType: tax.ParseDisplayType(cfg.Tax.DisplayType),
		logger:         logger,
	}
}

// CurrentCustomer returns the authenticated administrator or a guest
func (w *WorkContext) CurrentCustomer(ctx context.Context) *customers.Customer {
	req, ok := webcontext.From(ctx)
	if ok && req.IsAdmin && req.Username != "" {
		return &customers.Customer{
			BaseEntity: shared.BaseEntity{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(req.Username))},
			Username:   req.Username,
			IsAdmin:    true,
		}
	}
	return &customers.Customer{
		Username: GuestUsername,
		IsGuest:  true,
	}
}

// CurrentVendor is always nil: vendors are not supported
func (w *WorkContext) CurrentVendor(context.Context) *customers.Vendor {
	return nil
}

// WorkingLanguage matches Accept-Language against the supported languages
func (w *WorkContext) WorkingLanguage(ctx context.Context) language.Tag {
	req, ok := webcontext.From(ctx)
	if !ok || req.AcceptLanguage == "" {
		return w.supported[0]
	}
	desired, _, err := language.ParseAcceptLanguage(req.AcceptLanguage)
	if err != nil || len(desired) == 0 {
		return w.supported[0]
	}
	_, idx, _ := w.matcher.Match(desired...)
	return w.supported[idx]
}

// WorkingCurrency returns the published currency named by the currency query
// parameter, then the store default, then the primary currency, then the
// first published currency
func (w *WorkContext) WorkingCurrency(ctx context.Context) (*directory.Currency, error) {
	var codes []string
	if req, ok := webcontext.From(ctx); ok {
		if code := req.QueryValue(CurrencyQueryParam); code != "" {
			codes = append(codes, code)
		}
	}
	if w.stores != nil {
		store, err := w.stores.CurrentStore(ctx)
		if err != nil {
			w.logger.Debug("No current store for working currency", zap.Error(err))
		}
		if store != nil && store.DefaultCurrency != "" {
			codes = append(codes, store.DefaultCurrency)
		}
	}
	if w.primaryCode != "" {
		codes = append(codes, w.primaryCode)
	}

	for _, code := range codes {
		currency, err := w.currencies.GetCurrencyByCode(ctx, code)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if currency.Published {
			return currency, nil
		}
	}

	published, err := w.currencies.GetAllCurrencies(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(published) == 0 {
		return nil, fmt.Errorf("%w: no published currency (tried %s)", shared.ErrNotFound, strings.Join(codes, ", "))
	}
	return published[0], nil
}

// TaxDisplayType returns the configured tax display type
func (w *WorkContext) TaxDisplayType(context.Context) tax.DisplayType {
	return w.taxDisplayType
}

// IsAdmin reports whether the request carries an administrator token
func (w *WorkContext) IsAdmin(ctx context.Context) bool {
	req, ok := webcontext.From(ctx)
	return ok && req.IsAdmin
}

var _ customers.WorkContext = (*WorkContext)(nil)
