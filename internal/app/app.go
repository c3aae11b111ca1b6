// Package app contains the root application model.
package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"genelink/internal/log"
	"genelink/internal/mode"
	"genelink/internal/mode/explore"
	"genelink/internal/watcher"
)

// datasetChangedMsg signals that the watched dataset file changed on disk.
type datasetChangedMsg struct{}

// Model is the root application state.
type Model struct {
	explore  explore.Model
	services mode.Services

	// Global state
	width  int
	height int

	// File watcher for auto-reload
	watcherHandle  *watcher.Watcher
	watcherChanges <-chan struct{}
	reload         func() error
}

// Config configures the root application model.
type Config struct {
	// Services are the shared dependencies passed to mode controllers.
	Services mode.Services

	// Watcher, when set, signals dataset file changes; the app owns its
	// lifecycle from here on.
	Watcher *watcher.Watcher

	// Reload re-reads the dataset into the store. Required when Watcher is
	// set.
	Reload func() error
}

// New creates the application model. When auto-reload is configured, the
// watcher must already be constructed; the app starts and stops it.
func New(cfg Config) (Model, error) {
	m := Model{
		explore:       explore.New(cfg.Services),
		services:      cfg.Services,
		watcherHandle: cfg.Watcher,
		reload:        cfg.Reload,
	}

	if cfg.Watcher != nil {
		changes, err := cfg.Watcher.Start()
		if err != nil {
			return Model{}, err
		}
		m.watcherChanges = changes
	}

	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.explore.Init()}
	if m.watcherChanges != nil {
		cmds = append(cmds, m.waitForDatasetChange())
	}
	return tea.Batch(cmds...)
}

func (m Model) waitForDatasetChange() tea.Cmd {
	return func() tea.Msg {
		<-m.watcherChanges
		return datasetChangedMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.explore = m.explore.SetSize(msg.Width, msg.Height)
		return m, nil

	case datasetChangedMsg:
		log.Info(log.CatWatcher, "Dataset changed on disk, reloading")
		if m.reload != nil {
			if err := m.reload(); err != nil {
				log.Warn(log.CatWatcher, "Dataset reload failed", "error", err)
			}
		}
		return m, m.waitForDatasetChange()
	}

	var cmd tea.Cmd
	m.explore, cmd = m.explore.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	return m.explore.View()
}

// Close releases resources held by the application.
func (m *Model) Close() error {
	m.explore.Close()
	if m.watcherHandle != nil {
		return m.watcherHandle.Stop()
	}
	return nil
}
