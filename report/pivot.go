package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/weiihann/perfcollect/results"
)

// Cell is one pivot table entry. OK is false when the program has no
// measurement at that size.
type Cell struct {
	Value float64
	OK    bool
}

// PivotRow holds one size's times, one cell per program.
type PivotRow struct {
	Size  int
	Cells []Cell
}

// Pivot maps problem size to one column per program.
type Pivot struct {
	SizeColumn string
	Programs   []string
	Rows       []PivotRow
}

// NewPivot reshapes records. Rows are sizes in ascending order, columns
// are program names in lexical order. When a size and program appear more
// than once, the first record wins.
func NewPivot(sizeColumn string, records []results.Record) *Pivot {
	progSet := make(map[string]bool)
	sizeSet := make(map[int]bool)
	first := make(map[pivotKey]float64)

	for _, r := range records {
		progSet[r.Program] = true
		sizeSet[r.Size] = true

		k := pivotKey{size: r.Size, program: r.Program}
		if _, ok := first[k]; !ok {
			first[k] = r.Time
		}
	}

	p := &Pivot{SizeColumn: sizeColumn}

	for prog := range progSet {
		p.Programs = append(p.Programs, prog)
	}

	sort.Strings(p.Programs)

	sizes := make([]int, 0, len(sizeSet))
	for s := range sizeSet {
		sizes = append(sizes, s)
	}

	sort.Ints(sizes)

	for _, size := range sizes {
		row := PivotRow{Size: size, Cells: make([]Cell, len(p.Programs))}

		for i, prog := range p.Programs {
			if v, ok := first[pivotKey{size: size, program: prog}]; ok {
				row.Cells[i] = Cell{Value: v, OK: true}
			}
		}

		p.Rows = append(p.Rows, row)
	}

	return p
}

type pivotKey struct {
	size    int
	program string
}

// Table formats p as text: a header row followed by one row per size.
// Values are divided by divisor and printed with six decimals; missing
// cells are empty.
func (p *Pivot) Table(divisor float64) [][]string {
	table := make([][]string, 0, len(p.Rows)+1)

	header := append([]string{p.SizeColumn}, p.Programs...)
	table = append(table, header)

	for _, row := range p.Rows {
		line := make([]string, 0, len(row.Cells)+1)
		line = append(line, strconv.Itoa(row.Size))

		for _, c := range row.Cells {
			if !c.OK {
				line = append(line, "")

				continue
			}

			line = append(line, fmt.Sprintf("%.6f", c.Value/divisor))
		}

		table = append(table, line)
	}

	return table
}

// WritePivot writes p to w as tab separated values.
func WritePivot(w io.Writer, p *Pivot, divisor float64) error {
	return writeTable(w, p.Table(divisor))
}

// SavePivot writes p as tab separated values to path, replacing any
// existing file.
func SavePivot(path string, p *Pivot, divisor float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := WritePivot(f, p, divisor); err != nil {
		f.Close()

		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}

// ReadTable reads a tab separated table such as one written by
// WritePivot.
func ReadTable(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'

	table, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("empty table")
	}

	return table, nil
}

// LoadTable reads a tab separated table from path.
func LoadTable(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	table, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return table, nil
}

func writeTable(w io.Writer, table [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.WriteAll(table); err != nil {
		return err
	}

	return cw.Error()
}
