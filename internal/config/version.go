package config

// Version is the back-office binary version.
// Set at build time via: -ldflags "-X github.com/estatedesk/backoffice/internal/config.Version=<tag>"
var Version = "dev"
