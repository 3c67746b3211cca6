// Package infra contains technical adapters such as metrics sinks, run
// stores, the MQTT policy publisher and error monitoring. These packages
// depend only on the interfaces defined in the core packages.
package infra
