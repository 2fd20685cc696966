// Package env holds build information, set through -ldflags:
//
//	go build -ldflags "-X github.com/ostafen/sdfat/internal/env.Version=v0.1.0"
package env

const AppName = "sdfat"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)
