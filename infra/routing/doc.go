// Package routing holds the routing.Provider implementations. Importing it
// registers every provider type with core/routing.
package routing

import (
	_ "github.com/kilianp07/powerfleet/infra/routing/amap"
	_ "github.com/kilianp07/powerfleet/infra/routing/straightline"
)
