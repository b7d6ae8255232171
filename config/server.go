package config

import "fmt"

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Address string `json:"address"`
	// Token protects GET /api/plans when set.
	Token string `json:"token"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}

func (c ServerConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	return nil
}
