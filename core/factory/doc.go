// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type string and a map of raw
// settings. Factories decode the settings into typed structs and return the
// concrete implementation.
//
// Routing providers and metrics sinks are both built this way:
//
//	routing.RegisterProvider("straightline", func(conf map[string]any) (routing.Provider, error) {
//	    var c struct{ SpeedKmh float64 `json:"speed_kmh"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return straightline.New(c.SpeedKmh), nil
//	})
//	p, err := routing.NewProvider(factory.ModuleConfig{Type: "straightline"})
package factory
