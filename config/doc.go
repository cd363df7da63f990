// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml (or config.yaml / config.toml),
// overlaid with environment variables for the yard location and provider
// credentials, and validated using struct tags. The resulting AppConfig is
// built once at startup and passed by pointer to the components that need
// it; nothing mutates it afterwards.
package config
