package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Pendaftar PPDB",
		Headers: []string{"No. Registrasi", "Nama", "Status"},
		Rows: []map[string]string{
			{"No. Registrasi": "PPDB-2026-AB12CD", "Nama": "Ahmad", "Status": "pending"},
			{"No. Registrasi": "PPDB-2026-ZX98YU", "Nama": "Siti, Nur", "Status": "approved"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "No. Registrasi,Nama,Status\nPPDB-2026-AB12CD,Ahmad,pending\nPPDB-2026-ZX98YU,\"Siti, Nur\",approved\n", string(out))
}

func TestCSVExporterSeparator(t *testing.T) {
	exporter := &CSVExporter{Separator: ';'}
	out, err := exporter.Render(Dataset{Headers: []string{"a", "b"}, Rows: []map[string]string{{"a": "1"}}})
	require.NoError(t, err)
	assert.Equal(t, "a;b\n1;\n", string(out))
}

func TestCSVExporterNeutralizesFormulas(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Nama", "Telepon"},
		Rows: []map[string]string{
			{"Nama": "=HYPERLINK(\"http://x\")", "Telepon": "+6281234"},
			{"Nama": "-cmd", "Telepon": "@SUM(A1)"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Nama,Telepon\n\"'=HYPERLINK(\"\"http://x\"\")\",+6281234\n'-cmd,'@SUM(A1)\n", string(out))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := sampleDataset()
	for i := 0; i < 60; i++ {
		data.Rows = append(data.Rows, map[string]string{"Nama": "Peserta"})
	}
	out, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
}
