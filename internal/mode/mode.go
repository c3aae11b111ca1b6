// Package mode defines the mode controller interface and shared services.
package mode

import (
	tea "github.com/charmbracelet/bubbletea"

	"genelink/internal/bus"
	"genelink/internal/cohort"
	"genelink/internal/config"
)

// AppMode identifies the current application mode.
type AppMode int

const (
	ModeExplore AppMode = iota
)

// Controller defines the interface all modes must implement.
type Controller interface {
	// Init returns initial commands for the mode.
	Init() tea.Cmd

	// Update handles messages and returns updated model and commands.
	Update(msg tea.Msg) (Controller, tea.Cmd)

	// View renders the mode's UI.
	View() string

	// SetSize handles terminal resize events.
	SetSize(width, height int) Controller
}

// Services contains shared dependencies injected into mode controllers.
type Services struct {
	Store       *cohort.Store
	Bus         *bus.Bus
	Config      *config.Config
	ConfigPath  string
	DatasetName string
}
