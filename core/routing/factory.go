package routing

import "github.com/kilianp07/powerfleet/core/factory"

var providers = factory.NewRegistry[Provider]()

// RegisterProvider makes a provider type available to NewProvider.
func RegisterProvider(name string, f factory.Factory[Provider]) error {
	return providers.Register(name, f)
}

// NewProvider instantiates the configured provider.
func NewProvider(cfg factory.ModuleConfig) (Provider, error) {
	return providers.Create(cfg)
}

// ProviderTypes lists the registered provider types.
func ProviderTypes() []string { return providers.Types() }
