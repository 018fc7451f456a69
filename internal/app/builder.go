package app

import "go.trai.ch/kern/internal/core/ports"

// Components holds the resolved application components.
type Components struct {
	App          *App
	Logger       ports.Logger
	ConfigLoader ports.ConfigLoader
}
