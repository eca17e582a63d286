// Package constants defines shared application-level constant values.
package constants

// Runtime environments.
const (
	EnvDevelop    = "develop"
	EnvProduction = "production"
)

// Pub/Sub provider names accepted in configuration.
const (
	PubSubProviderGoogle = "google"
	PubSubProviderLocal  = "local"
)
