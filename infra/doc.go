// Package infra contains technical adapters such as market data
// loaders, the MQTT publisher and metrics sinks. These packages should
// depend only on the interfaces defined in the core packages.
package infra
