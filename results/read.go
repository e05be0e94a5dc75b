package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Read loads a results file written by Append. The schema is inferred
// from the header: the first column is the size column and the columns
// between num_threads and time are parameters.
func Read(path string) (Schema, []Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Schema{}, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	schema, records, err := Decode(f)
	if err != nil {
		return Schema{}, nil, fmt.Errorf("read %s: %w", path, err)
	}

	return schema, records, nil
}

// Decode parses CSV results from r.
func Decode(r io.Reader) (Schema, []Record, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return Schema{}, nil, err
	}

	if len(rows) == 0 {
		return Schema{}, nil, fmt.Errorf("missing header")
	}

	schema, err := parseHeader(rows[0])
	if err != nil {
		return Schema{}, nil, err
	}

	records := make([]Record, 0, len(rows)-1)

	for i, row := range rows[1:] {
		rec, err := parseRow(schema, row)
		if err != nil {
			return Schema{}, nil, fmt.Errorf("line %d: %w", i+2, err)
		}

		records = append(records, rec)
	}

	return schema, records, nil
}

func parseHeader(h []string) (Schema, error) {
	if len(h) < 4 ||
		h[1] != ColumnProgram ||
		h[2] != ColumnThreads ||
		h[len(h)-1] != ColumnTime {
		return Schema{}, fmt.Errorf("unexpected header %v", h)
	}

	s := Schema{SizeColumn: h[0]}
	if params := h[3 : len(h)-1]; len(params) > 0 {
		s.ParamColumns = append([]string(nil), params...)
	}

	return s, nil
}

func parseRow(s Schema, row []string) (Record, error) {
	var (
		rec Record
		err error
	)

	if rec.Size, err = strconv.Atoi(row[0]); err != nil {
		return Record{}, fmt.Errorf("%s: %w", s.SizeColumn, err)
	}

	rec.Program = row[1]

	if rec.Threads, err = strconv.Atoi(row[2]); err != nil {
		return Record{}, fmt.Errorf("%s: %w", ColumnThreads, err)
	}

	for i, name := range s.ParamColumns {
		v, err := strconv.Atoi(row[3+i])
		if err != nil {
			return Record{}, fmt.Errorf("%s: %w", name, err)
		}

		rec.Params = append(rec.Params, Param{Name: name, Value: v})
	}

	if rec.Time, err = strconv.ParseFloat(row[len(row)-1], 64); err != nil {
		return Record{}, fmt.Errorf("%s: %w", ColumnTime, err)
	}

	return rec, nil
}
