package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	data := Dataset{
		Headers: []string{"DNI", "Nombre", "Estado"},
		Rows: []map[string]string{
			{"DNI": "40111222", "Nombre": "Lucia", "Estado": "ACEPTADO"},
			{"DNI": "38999000", "Nombre": "Marcos"},
		},
	}

	payload, err := exporter.Render(data)
	require.NoError(t, err)
	assert.Equal(t, "DNI,Nombre,Estado\n40111222,Lucia,ACEPTADO\n38999000,Marcos,\n", string(payload))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}
