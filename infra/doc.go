// Package infra holds the adapters behind the core interfaces: routing
// providers, metrics sinks, the MQTT route publisher, error monitoring and
// logging.
package infra
