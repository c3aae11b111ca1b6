// Package explore implements the linked-view cohort exploration mode: four
// panes (filters, samples, mutations, summary) rendered independently from
// the same cohort store snapshot.
package explore

import (
	"sort"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"genelink/internal/bus"
	"genelink/internal/cohort"
	"genelink/internal/log"
	"genelink/internal/mode"
)

// FocusPane represents which pane has focus in explore mode.
type FocusPane int

const (
	FocusFilters FocusPane = iota
	FocusSamples
	FocusMutations
)

// Filter ids owned by the explore mode's key bindings. Each key cycles or
// toggles the filter stored under its id.
const (
	filterDisease = "disease"
	filterType    = "type"
	filterGene    = "gene"
	filterAge     = "age"
)

// ageBuckets are the presets the age key cycles through.
var ageBuckets = []cohort.AgeRange{
	{MinAge: 0, MaxAge: 49},
	{MinAge: 50, MaxAge: 69},
	{MinAge: 70, MaxAge: 150},
}

// stateChangedMsg signals that the cohort store has a new state snapshot.
type stateChangedMsg struct{}

// Model holds the explore mode state.
type Model struct {
	services mode.Services

	// Latest store snapshot; every pane renders from this and nothing else.
	state   cohort.State
	changes chan struct{}
	unsub   func()

	// Samples pane
	samples table.Model

	// Mutations pane cursor
	mutationIdx int

	// Filters pane cursor
	filterIdx int

	// Focus management
	focus FocusPane

	// Layout
	width  int
	height int
}

// New creates the explore mode bound to the shared cohort store. The store
// subscription only signals; the model re-reads the snapshot on receipt, so
// coalesced signals never leave the view stale.
func New(services mode.Services) Model {
	changes := make(chan struct{}, 1)
	unsub := services.Store.Subscribe(func(cohort.State) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	columns := []table.Column{
		{Title: "Sample", Width: 14},
		{Title: "Disease", Width: 12},
		{Title: "Type", Width: 10},
		{Title: "Age", Width: 4},
		{Title: "Status", Width: 8},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
	)

	m := Model{
		services: services,
		changes:  changes,
		unsub:    unsub,
		samples:  tbl,
		focus:    FocusSamples,
	}
	m.state = services.Store.GetState()
	m.syncSamplesRows()
	return m
}

// Init returns initial commands for the mode.
func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

// waitForChange blocks on the store subscription signal.
func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.changes
		return stateChangedMsg{}
	}
}

// Close unsubscribes from the store.
func (m Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

// SetSize handles terminal resize.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height

	if width == 0 || height == 0 {
		return m
	}

	_, rightWidth := m.columnWidths()
	samplesHeight, _ := m.rightHeights()

	// Table interior: pane borders take 2 columns and 2 rows, header takes 1.
	m.samples.SetWidth(max(rightWidth-2, 1))
	m.samples.SetHeight(max(samplesHeight-3, 1))

	return m
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case stateChangedMsg:
		m.state = m.services.Store.GetState()
		m.clampCursors()
		m.syncSamplesRows()
		return m, m.waitForChange()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.Close()
		return m, tea.Quit

	case "tab":
		m.focus = (m.focus + 1) % 3
		return m, nil

	case "shift+tab":
		m.focus = (m.focus + 2) % 3
		return m, nil

	case "up", "k":
		return m.handleNavUp()

	case "down", "j":
		return m.handleNavDown()

	case "enter":
		return m.handleSelect()

	case "d":
		return m.cycleDiseaseFilter()

	case "t":
		return m.cycleTypeFilter()

	case "a":
		return m.cycleAgeFilter()

	case "g":
		return m.toggleGeneFilter()

	case "backspace", "delete":
		if m.focus == FocusFilters {
			return m.removeFilterUnderCursor()
		}
		return m, nil

	case "c":
		m.services.Store.ClearFilters()
		m.services.Bus.Emit(bus.FilterApply, "")
		return m, nil

	case "x":
		m.services.Store.ClearSelection()
		m.services.Bus.Emit(bus.SelectionClear, nil)
		return m, nil
	}

	return m, nil
}

func (m Model) handleNavUp() (Model, tea.Cmd) {
	switch m.focus {
	case FocusFilters:
		if m.filterIdx > 0 {
			m.filterIdx--
		}
	case FocusSamples:
		m.samples.MoveUp(1)
	case FocusMutations:
		if m.mutationIdx > 0 {
			m.mutationIdx--
		}
	}
	return m, nil
}

func (m Model) handleNavDown() (Model, tea.Cmd) {
	switch m.focus {
	case FocusFilters:
		if m.filterIdx < len(m.filterIDs())-1 {
			m.filterIdx++
		}
	case FocusSamples:
		m.samples.MoveDown(1)
	case FocusMutations:
		if m.mutationIdx < len(m.state.FilteredMutations)-1 {
			m.mutationIdx++
		}
	}
	return m, nil
}

// handleSelect publishes the item under the cursor as the shared selection.
// In the filters pane, enter removes the filter under the cursor instead.
func (m Model) handleSelect() (Model, tea.Cmd) {
	switch m.focus {
	case FocusFilters:
		return m.removeFilterUnderCursor()

	case FocusSamples:
		idx := m.samples.Cursor()
		if idx < 0 || idx >= len(m.state.FilteredSamples) {
			return m, nil
		}
		sel := cohort.Selection{Kind: cohort.SelectSample, ID: m.state.FilteredSamples[idx].SampleID}
		m.services.Store.SetSelection(sel)
		m.services.Bus.Emit(bus.SelectionChange, sel)
		log.Debug(log.CatUI, "Sample selected", "id", sel.ID)

	case FocusMutations:
		if m.mutationIdx < 0 || m.mutationIdx >= len(m.state.FilteredMutations) {
			return m, nil
		}
		sel := cohort.Selection{Kind: cohort.SelectMutation, ID: m.state.FilteredMutations[m.mutationIdx].ID}
		m.services.Store.SetSelection(sel)
		m.services.Bus.Emit(bus.SelectionChange, sel)
		log.Debug(log.CatUI, "Mutation selected", "id", sel.ID)
	}
	return m, nil
}

// cycleDiseaseFilter steps the disease filter through every disease present
// in the dataset, then off.
func (m Model) cycleDiseaseFilter() (Model, tea.Cmd) {
	diseases := m.distinctDiseases()
	if len(diseases) == 0 {
		return m, nil
	}

	next := 0
	if current, ok := m.state.ActiveFilters[filterDisease].(cohort.DiseaseEquals); ok {
		for i, d := range diseases {
			if d == current.Disease {
				next = i + 1
				break
			}
		}
	}

	if next >= len(diseases) {
		m.services.Store.RemoveFilter(filterDisease)
	} else if err := m.services.Store.SetFilter(filterDisease, cohort.DiseaseEquals{Disease: diseases[next]}); err != nil {
		log.Warn(log.CatUI, "Disease filter rejected", "error", err)
		return m, nil
	}
	m.services.Bus.Emit(bus.FilterApply, filterDisease)
	return m, nil
}

// cycleTypeFilter steps the consequence-type filter through every type
// present in the dataset, then off.
func (m Model) cycleTypeFilter() (Model, tea.Cmd) {
	types := m.distinctTypes()
	if len(types) == 0 {
		return m, nil
	}

	next := 0
	if current, ok := m.state.ActiveFilters[filterType].(cohort.MutationTypeIn); ok && len(current.Types) == 1 {
		for i, t := range types {
			if t == current.Types[0] {
				next = i + 1
				break
			}
		}
	}

	if next >= len(types) {
		m.services.Store.RemoveFilter(filterType)
	} else if err := m.services.Store.SetFilter(filterType, cohort.MutationTypeIn{Types: []cohort.ConsequenceType{types[next]}}); err != nil {
		log.Warn(log.CatUI, "Type filter rejected", "error", err)
		return m, nil
	}
	m.services.Bus.Emit(bus.FilterApply, filterType)
	return m, nil
}

// cycleAgeFilter steps through the age bucket presets, then off.
func (m Model) cycleAgeFilter() (Model, tea.Cmd) {
	next := 0
	if current, ok := m.state.ActiveFilters[filterAge].(cohort.AgeRange); ok {
		for i, b := range ageBuckets {
			if b == current {
				next = i + 1
				break
			}
		}
	}

	if next >= len(ageBuckets) {
		m.services.Store.RemoveFilter(filterAge)
	} else if err := m.services.Store.SetFilter(filterAge, ageBuckets[next]); err != nil {
		log.Warn(log.CatUI, "Age filter rejected", "error", err)
		return m, nil
	}
	m.services.Bus.Emit(bus.FilterApply, filterAge)
	return m, nil
}

// toggleGeneFilter restricts the view to the gene of the mutation under the
// cursor, or lifts the restriction if it is already active for that gene.
func (m Model) toggleGeneFilter() (Model, tea.Cmd) {
	if m.focus != FocusMutations || m.mutationIdx < 0 || m.mutationIdx >= len(m.state.FilteredMutations) {
		return m, nil
	}
	gene := m.state.FilteredMutations[m.mutationIdx].Gene

	if current, ok := m.state.ActiveFilters[filterGene].(cohort.GeneIn); ok &&
		len(current.Genes) == 1 && current.Genes[0] == gene {
		m.services.Store.RemoveFilter(filterGene)
	} else if err := m.services.Store.SetFilter(filterGene, cohort.GeneIn{Genes: []string{gene}}); err != nil {
		log.Warn(log.CatUI, "Gene filter rejected", "error", err)
		return m, nil
	}
	m.services.Bus.Emit(bus.FilterApply, filterGene)
	return m, nil
}

func (m Model) removeFilterUnderCursor() (Model, tea.Cmd) {
	ids := m.filterIDs()
	if m.filterIdx < 0 || m.filterIdx >= len(ids) {
		return m, nil
	}
	m.services.Store.RemoveFilter(ids[m.filterIdx])
	m.services.Bus.Emit(bus.FilterApply, ids[m.filterIdx])
	return m, nil
}

// filterIDs returns the active filter ids in stable display order.
func (m Model) filterIDs() []string {
	ids := make([]string, 0, len(m.state.ActiveFilters))
	for id := range m.state.ActiveFilters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m Model) distinctDiseases() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range m.state.AllSamples {
		if _, ok := seen[s.Disease]; !ok {
			seen[s.Disease] = struct{}{}
			out = append(out, s.Disease)
		}
	}
	sort.Strings(out)
	return out
}

func (m Model) distinctTypes() []cohort.ConsequenceType {
	seen := make(map[cohort.ConsequenceType]struct{})
	for _, mut := range m.state.AllMutations {
		seen[mut.Type] = struct{}{}
	}
	// Display order follows the canonical type list.
	var out []cohort.ConsequenceType
	for _, t := range cohort.ConsequenceTypes {
		if _, ok := seen[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

// clampCursors keeps every cursor inside the freshly filtered views.
func (m *Model) clampCursors() {
	if n := len(m.filterIDs()); m.filterIdx >= n {
		m.filterIdx = max(n-1, 0)
	}
	if n := len(m.state.FilteredMutations); m.mutationIdx >= n {
		m.mutationIdx = max(n-1, 0)
	}
	if n := len(m.state.FilteredSamples); m.samples.Cursor() >= n {
		m.samples.SetCursor(max(n-1, 0))
	}
}

// syncSamplesRows rebuilds the samples table from the current snapshot.
func (m *Model) syncSamplesRows() {
	rows := make([]table.Row, 0, len(m.state.FilteredSamples))
	for _, s := range m.state.FilteredSamples {
		rows = append(rows, table.Row{
			s.SampleID,
			s.Disease,
			s.SampleType,
			strconv.Itoa(s.AgeAtDiagnosis),
			s.VitalStatus,
		})
	}
	m.samples.SetRows(rows)
}
