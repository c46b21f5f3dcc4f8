package directory

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
)

// UpdateExchangeRatesTask copies live rates for the primary currency into the
// currency table
type UpdateExchangeRatesTask struct {
	currencies  *CurrencyService
	primaryCode string
	interval    time.Duration
	logger      *zap.Logger
}

// NewUpdateExchangeRatesTask creates the task
func NewUpdateExchangeRatesTask(currencies *CurrencyService, primaryCode string, interval time.Duration, logger *zap.Logger) *UpdateExchangeRatesTask {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdateExchangeRatesTask{
		currencies:  currencies,
		primaryCode: primaryCode,
		interval:    interval,
		logger:      logger,
	}
}

func (t *UpdateExchangeRatesTask) Name() string { return "update-exchange-rates" }

func (t *UpdateExchangeRatesTask) Interval() time.Duration { return t.interval }

// Execute reads the live rates and updates the matching currencies.
// Without an installed provider there is nothing to do.
func (t *UpdateExchangeRatesTask) Execute(ctx context.Context) error {
	rates, err := t.currencies.GetLiveRates(ctx, t.primaryCode)
	if errors.Is(err, shared.ErrNotFound) {
		t.logger.Debug("No exchange rate provider installed, skipping rate update")
		return nil
	}
	if err != nil {
		return err
	}

	updated := 0
	for _, rate := range rates {
		currency, err := t.currencies.GetCurrencyByCode(ctx, rate.CurrencyCode)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if currency.Rate.Equal(rate.Rate) {
			continue
		}
		currency.Rate = rate.Rate
		if err := t.currencies.UpdateCurrency(ctx, currency); err != nil {
			return err
		}
		updated++
	}

	t.logger.Info("Exchange rates updated",
		zap.String("primary_currency", t.primaryCode),
		zap.Int("rates", len(rates)),
		zap.Int("currencies_updated", updated),
	)
	return nil
}
