// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/kern/internal/adapters/config"
	_ "go.trai.ch/kern/internal/adapters/deployment"
	_ "go.trai.ch/kern/internal/adapters/logger"
	_ "go.trai.ch/kern/internal/adapters/resolver"
	_ "go.trai.ch/kern/internal/adapters/runtime"
	_ "go.trai.ch/kern/internal/adapters/telemetry"
	_ "go.trai.ch/kern/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/kern/internal/app"
)
