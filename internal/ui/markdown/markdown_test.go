package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderer(t *testing.T) {
	r, err := NewWithStyle(40, "notty")
	require.NoError(t, err)
	require.Equal(t, 40, r.Width())

	out, err := r.Render("# Cohort summary\n\nA **bold** claim.")
	require.NoError(t, err)
	require.Contains(t, out, "Cohort summary")
	require.Contains(t, out, "bold")
}

func TestRenderer_WordWrap(t *testing.T) {
	r, err := NewWithStyle(20, "notty")
	require.NoError(t, err)

	out, err := r.Render(strings.Repeat("word ", 20))
	require.NoError(t, err)

	for _, line := range strings.Split(out, "\n") {
		require.LessOrEqual(t, len(line), 25, "lines wrap near the configured width")
	}
}
