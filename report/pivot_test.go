package report

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/perfcollect/results"
)

var bfsRecords = []results.Record{
	{Size: 1000, Program: "serial_BFS", Threads: 1, Time: 3e9},
	{Size: 10, Program: "serial_BFS", Threads: 1, Time: 1.5e9},
	{Size: 10, Program: "openmp_BFS", Threads: 8, Time: 0.5e9},
	{Size: 10, Program: "openmp_BFS", Threads: 8, Time: 9e9},
}

func TestNewPivot(t *testing.T) {
	p := NewPivot("node_count", bfsRecords)

	assert.Equal(t, "node_count", p.SizeColumn)
	assert.Equal(t, []string{"openmp_BFS", "serial_BFS"}, p.Programs)
	require.Len(t, p.Rows, 2)

	assert.Equal(t, 10, p.Rows[0].Size)
	assert.Equal(t, []Cell{{Value: 0.5e9, OK: true}, {Value: 1.5e9, OK: true}}, p.Rows[0].Cells)

	assert.Equal(t, 1000, p.Rows[1].Size)
	assert.Equal(t, []Cell{{}, {Value: 3e9, OK: true}}, p.Rows[1].Cells)
}

func TestPivotTable(t *testing.T) {
	table := NewPivot("node_count", bfsRecords).Table(1e9)

	assert.Equal(t, [][]string{
		{"node_count", "openmp_BFS", "serial_BFS"},
		{"10", "0.500000", "1.500000"},
		{"1000", "", "3.000000"},
	}, table)
}

func TestWritePivot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePivot(&buf, NewPivot("node_count", bfsRecords), 1e9))

	assert.Equal(t,
		"node_count\topenmp_BFS\tserial_BFS\n"+
			"10\t0.500000\t1.500000\n"+
			"1000\t\t3.000000\n",
		buf.String())

	table, err := ReadTable(&buf)
	require.NoError(t, err)
	assert.Equal(t, NewPivot("node_count", bfsRecords).Table(1e9), table)
}

func TestSavePivotAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pivot_table.csv")
	p := NewPivot("node_count", bfsRecords)

	require.NoError(t, SavePivot(path, p, 1e9))
	// A second save replaces the file.
	require.NoError(t, SavePivot(path, p, 1e9))

	table, err := LoadTable(path)
	require.NoError(t, err)
	assert.Len(t, table, 3)
}

func TestReadTableEmpty(t *testing.T) {
	_, err := ReadTable(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestPivotEmpty(t *testing.T) {
	p := NewPivot("array_size", nil)
	assert.Equal(t, [][]string{{"array_size"}}, p.Table(1))
}

func TestRenderTable(t *testing.T) {
	table := NewPivot("node_count", bfsRecords).Table(1e9)

	img, err := RenderTable(table)
	require.NoError(t, err)

	b := img.Bounds()
	assert.Greater(t, b.Dx(), 3*2*cellPadX)
	assert.Equal(t, 3*(13+2*cellPadY)+1, b.Dy())

	// Header background is shaded, body is white.
	assert.Equal(t, tableHeader, img.RGBAAt(2, 2))
	assert.Equal(t, tableBackground, img.RGBAAt(2, b.Dy()-3))
	// Top-left corner is a grid line.
	assert.Equal(t, tableGrid, img.RGBAAt(0, 0))
}

func TestRenderTableErrors(t *testing.T) {
	_, err := RenderTable(nil)
	assert.Error(t, err)

	_, err = RenderTable([][]string{{"a", "b"}, {"1"}})
	assert.Error(t, err)
}

func TestSaveTableImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pivot_table.png")
	require.NoError(t, SaveTableImage(path, [][]string{{"array_size", "p"}, {"10", "1.000000"}}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = png.Decode(f)
	require.NoError(t, err)
}
