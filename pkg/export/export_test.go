package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	payload, err := exporter.Render(Dataset{
		Headers: []string{"Name", "Email"},
		Rows: [][]string{
			{"Ana Lopez", "ana@example.com"},
			{"Juan Perez", "juan@example.com"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Email", lines[0])
	assert.Equal(t, "Ana Lopez,ana@example.com", lines[1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	assert.Error(t, err)
}

func TestCSVExporterQuotesSeparators(t *testing.T) {
	exporter := NewCSVExporter()
	payload, err := exporter.Render(Dataset{
		Headers: []string{"Roles"},
		Rows:    [][]string{{"Administrador, Revisor"}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"Administrador, Revisor"`)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	payload, err := exporter.Render(Dataset{
		Headers: []string{"Category", "Subcategories"},
		Rows:    [][]string{{"Historia", "4"}},
	}, "Catalog Report")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	exporter := NewPDFExporter()
	_, err := exporter.Render(Dataset{}, "x")
	assert.Error(t, err)
}
