package explore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestView_RendersAllPanes(t *testing.T) {
	m := New(testServices(t))
	defer m.Close()
	m = m.SetSize(100, 30)

	view := m.View()
	require.Contains(t, view, "Filters")
	require.Contains(t, view, "Samples (4/4)")
	require.Contains(t, view, "Mutations (3/3)")
	require.Contains(t, view, "Summary")
	require.Contains(t, view, "lung-demo")
	require.Contains(t, view, "No active filters")
	require.Contains(t, view, "Nothing selected")
	require.Contains(t, view, "EGFR")
	require.Contains(t, view, "q quit", "status bar hints are shown")
}

func TestView_ZeroSizeIsEmpty(t *testing.T) {
	m := New(testServices(t))
	defer m.Close()

	require.Empty(t, m.View())
}

func TestView_ReflectsFilterAndSelection(t *testing.T) {
	m := New(testServices(t))
	defer m.Close()
	m = m.SetSize(100, 30)

	m, _ = m.Update(keyPress("t"))
	m, _ = m.Update(keyPress("enter"))
	m = sync(m)

	view := m.View()
	require.Contains(t, view, "Filters (1)")
	require.Contains(t, view, "Mutations (2/3)")
	require.Contains(t, view, "Sample s1")
}

func TestView_StatusBarDropsWholeHints(t *testing.T) {
	m := New(testServices(t))
	defer m.Close()
	m = m.SetSize(100, 30)

	// Not every hint fits at this width. Hints that do not fit are dropped
	// whole; none is ever cut mid-word.
	view := m.View()
	require.Contains(t, view, "c clear filters")
	require.Contains(t, view, "q quit")
	require.NotContains(t, view, "x clear sele")
	require.NotContains(t, view, "clear selection")
}

func TestView_NoStatusBarWhenDisabled(t *testing.T) {
	services := testServices(t)
	services.Config.UI.ShowStatusBar = false
	m := New(services)
	defer m.Close()
	m = m.SetSize(100, 30)

	require.NotContains(t, m.View(), "q quit")
}

func TestView_EmptyFilterResult(t *testing.T) {
	m := New(testServices(t))
	defer m.Close()
	m = m.SetSize(100, 30)

	// Age bucket 50-69 twice lands on 70+, leaving one sample (s4, 72);
	// cycle to the first bucket instead and then filter disease away via
	// gene restriction until no mutation is visible.
	m.focus = FocusMutations
	m, _ = m.Update(keyPress("g"))
	m, _ = m.Update(keyPress("a"))
	m = sync(m)

	view := m.View()
	require.True(t,
		strings.Contains(view, "No mutations match") || strings.Contains(view, "Mutations (0/3)") ||
			strings.Contains(view, "Mutations (1/3)"),
		"filtered mutation pane reflects the restriction")
}
