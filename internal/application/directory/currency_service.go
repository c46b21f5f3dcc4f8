package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/plugin"
	"github.com/storefront/backend/internal/infrastructure/cache"
)

// Cache keys
const (
	CurrenciesPatternKey = "storefront.currency."
	currenciesAllKey     = "storefront.currency.all"
	currencyByCodeKey    = "storefront.currency.bycode-%s"
	liveRatesKey         = "storefront.exchangerate.live-%s-%s"
)

// CurrencyService handles currencies and live exchange rates
type CurrencyService struct {
	currencies     shared.Repository[directory.Currency]
	plugins        *plugin.PluginManager
	cache          cache.Manager
	activeProvider string
	ratesCacheTime time.Duration
	logger         *zap.Logger
}

// CurrencyServiceOption configures the service
type CurrencyServiceOption func(*CurrencyService)

// WithRatesCacheTime sets how long live rates are cached
func WithRatesCacheTime(d time.Duration) CurrencyServiceOption {
	return func(s *CurrencyService) {
		s.ratesCacheTime = d
	}
}

// WithCurrencyLogger sets the logger
func WithCurrencyLogger(logger *zap.Logger) CurrencyServiceOption {
	return func(s *CurrencyService) {
		s.logger = logger
	}
}

// NewCurrencyService creates a new CurrencyService. activeProvider is the
// system name of the exchange rate provider used for live rates.
func NewCurrencyService(
	currencies shared.Repository[directory.Currency],
	plugins *plugin.PluginManager,
	cacheManager cache.Manager,
	activeProvider string,
	opts ...CurrencyServiceOption,
) *CurrencyService {
	s := &CurrencyService{
		currencies:     currencies,
		plugins:        plugins,
		cache:          cacheManager,
		activeProvider: activeProvider,
		ratesCacheTime: cache.DefaultCacheTime,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAllCurrencies returns the currencies in display order
func (s *CurrencyService) GetAllCurrencies(ctx context.Context, showHidden bool) ([]*directory.Currency, error) {
	all, err := cache.GetOrAcquireDefault(ctx, s.cache, currenciesAllKey, func(ctx context.Context) ([]*directory.Currency, error) {
		return s.currencies.Find(ctx, func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order, name")
		})
	})
	if err != nil || showHidden {
		return all, err
	}

	published := make([]*directory.Currency, 0, len(all))
	for _, c := range all {
		if c.Published {
			published = append(published, c)
		}
	}
	return published, nil
}

// GetCurrencyByCode returns the currency with the ISO 4217 code
func (s *CurrencyService) GetCurrencyByCode(ctx context.Context, code string) (*directory.Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.ErrNotFound
	}
	return cache.GetOrAcquireDefault(ctx, s.cache, fmt.Sprintf(currencyByCodeKey, code), func(ctx context.Context) (*directory.Currency, error) {
		return s.currencies.First(ctx, func(db *gorm.DB) *gorm.DB {
			return db.Where("UPPER(currency_code) = ?", code)
		})
	})
}

// UpdateCurrency saves a currency and drops the currency cache
func (s *CurrencyService) UpdateCurrency(ctx context.Context, currency *directory.Currency) error {
	currency.Touch()
	if err := s.currencies.Update(ctx, currency); err != nil {
		return err
	}
	return s.cache.RemoveByPattern(ctx, CurrenciesPatternKey)
}

// InsertCurrency stores a currency and drops the currency cache
func (s *CurrencyService) InsertCurrency(ctx context.Context, currency *directory.Currency) error {
	if err := s.currencies.Insert(ctx, currency); err != nil {
		return err
	}
	return s.cache.RemoveByPattern(ctx, CurrenciesPatternKey)
}

// LoadActiveExchangeRateProvider returns the configured provider if it is installed
func (s *CurrencyService) LoadActiveExchangeRateProvider() (directory.ExchangeRateProvider, error) {
	if s.activeProvider == "" || s.plugins == nil {
		return nil, fmt.Errorf("%w: no active exchange rate provider", shared.ErrNotFound)
	}
	providers := plugin.InstalledOfType[directory.ExchangeRateProvider](s.plugins, s.activeProvider)
	if len(providers) == 0 {
		return nil, fmt.Errorf("%w: exchange rate provider '%s' is not installed", shared.ErrNotFound, s.activeProvider)
	}
	return providers[0], nil
}

// GetLiveRates returns the rates of every currency relative to exchangeRateCurrencyCode
func (s *CurrencyService) GetLiveRates(ctx context.Context, exchangeRateCurrencyCode string) ([]directory.ExchangeRate, error) {
	provider, err := s.LoadActiveExchangeRateProvider()
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(exchangeRateCurrencyCode)
	key := fmt.Sprintf(liveRatesKey, provider.Descriptor().SystemName, code)
	return cache.GetOrAcquire(ctx, s.cache, key, s.ratesCacheTime, func(ctx context.Context) ([]directory.ExchangeRate, error) {
		rates, err := provider.GetCurrencyLiveRates(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("exchange rate provider '%s' failed: %w", provider.Descriptor().SystemName, err)
		}
		if rates == nil {
			rates = []directory.ExchangeRate{}
		}
		s.logger.Debug("Live rates loaded",
			zap.String("provider", provider.Descriptor().SystemName),
			zap.String("currency", code),
			zap.Int("rates", len(rates)),
		)
		return rates, nil
	})
}
