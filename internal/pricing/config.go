package pricing

import (
	"countertop_quote_backend/platform/config"
	"countertop_quote_backend/platform/logger"
)

// NewProviderFromConfig builds a provider for the configured sheet URL or
// local path. With neither set it serves the static table only.
func NewProviderFromConfig(cfg config.PricingConfig, log *logger.Logger) *Provider {
	opts := ProviderOptions{
		Columns: Columns{
			Key:      cfg.GetPricingKeyColumns(),
			Cost:     cfg.GetPricingCostColumn(),
			Slab:     cfg.GetPricingSlabColumn(),
			Material: cfg.GetPricingMaterialColumn(),
		},
		RefreshInterval: cfg.GetPricingRefreshInterval(),
		FetchTimeout:    cfg.GetPricingFetchTimeout(),
	}

	switch {
	case cfg.GetPricingSheetURL() != "":
		opts.Source = NewHTTPSource(cfg.GetPricingSheetURL(), cfg.GetPricingFetchTimeout())
	case cfg.GetPricingSheetPath() != "":
		opts.Source = NewFileSource(cfg.GetPricingSheetPath())
	}
	return NewProvider(opts, log)
}
