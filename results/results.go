// Package results persists averaged benchmark measurements as CSV rows.
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
)

// Fixed columns every schema carries.
const (
	ColumnProgram = "program_name"
	ColumnThreads = "num_threads"
	ColumnTime    = "time"
)

// Param is a named program parameter recorded next to a measurement,
// such as min_parallel_size.
type Param struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Record is one averaged measurement. Time is in nanoseconds.
type Record struct {
	Size    int     `json:"size"`
	Program string  `json:"program"`
	Threads int     `json:"threads"`
	Params  []Param `json:"params,omitempty"`
	Time    float64 `json:"time"`
}

// Param returns the value of the named parameter.
func (r Record) Param(name string) (int, bool) {
	for _, p := range r.Params {
		if p.Name == name {
			return p.Value, true
		}
	}

	return 0, false
}

// Schema names the variable columns of a results file.
type Schema struct {
	SizeColumn   string
	ParamColumns []string
}

// Header returns the CSV header row for s.
func (s Schema) Header() []string {
	h := make([]string, 0, len(s.ParamColumns)+4)
	h = append(h, s.SizeColumn, ColumnProgram, ColumnThreads)
	h = append(h, s.ParamColumns...)
	h = append(h, ColumnTime)

	return h
}

func (s Schema) row(r Record) []string {
	row := make([]string, 0, len(s.ParamColumns)+4)
	row = append(row,
		strconv.Itoa(r.Size),
		r.Program,
		strconv.Itoa(r.Threads),
	)

	for _, name := range s.ParamColumns {
		v, _ := r.Param(name)
		row = append(row, strconv.Itoa(v))
	}

	return append(row, strconv.FormatFloat(r.Time, 'f', -1, 64))
}

// Append adds records to the CSV file at path. The header is written
// only when the file does not exist or is empty. An existing file whose
// header differs from schema is rejected.
func Append(path string, schema Schema, records []Record) error {
	writeHeader := true

	info, err := os.Stat(path)
	switch {
	case err == nil && info.Size() > 0:
		writeHeader = false

		if err := checkHeader(path, schema); err != nil {
			return err
		}
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	if err := write(f, schema, records, writeHeader); err != nil {
		f.Close()

		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}

func write(w io.Writer, schema Schema, records []Record, header bool) error {
	cw := csv.NewWriter(w)

	if header {
		if err := cw.Write(schema.Header()); err != nil {
			return err
		}
	}

	for _, r := range records {
		if err := cw.Write(schema.row(r)); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

func checkHeader(path string, schema Schema) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	got, err := csv.NewReader(f).Read()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", path, err)
	}

	if want := schema.Header(); !slices.Equal(got, want) {
		return fmt.Errorf(
			"%s has header %v, want %v", path, got, want,
		)
	}

	return nil
}
