package amap

import (
	"github.com/kilianp07/powerfleet/core/factory"
	"github.com/kilianp07/powerfleet/core/routing"
)

func init() {
	_ = routing.RegisterProvider("amap", func(conf map[string]any) (routing.Provider, error) {
		var cfg Config
		if err := factory.Decode(conf, &cfg); err != nil {
			return nil, err
		}
		return New(cfg)
	})
}
