package vision

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"cardenrich/internal/config"
	"cardenrich/internal/domain"
	"cardenrich/internal/port"
)

// ProviderFactory is a function that creates a VisionModel from a provider config.
type ProviderFactory func(cfg *config.VisionProviderConfig) (port.VisionModel, error)

// registry of provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a vision provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewModel creates a VisionModel from a provider config using the registered factory.
func NewModel(cfg *config.VisionProviderConfig) (port.VisionModel, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, errors.Wrapf(domain.ErrUnknownProvider, "provider %q", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the primary model and, when a secondary is configured,
// wraps both in a FallbackModel.
func NewFromConfig(cfg *config.VisionConfig, logger *zap.Logger) (port.VisionModel, error) {
	primary, err := NewModel(cfg.PrimaryConfig())
	if err != nil {
		return nil, errors.Wrap(err, "creating primary vision model")
	}
	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}
	secondary, err := NewModel(secondaryCfg)
	if err != nil {
		return nil, errors.Wrap(err, "creating secondary vision model")
	}
	return NewFallbackModel(
		[]port.VisionModel{primary, secondary},
		[]string{cfg.Provider, secondaryCfg.Provider},
		logger,
	), nil
}
