package results

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bfsSchema = Schema{SizeColumn: "node_count"}

var sortSchema = Schema{
	SizeColumn:   "array_size",
	ParamColumns: []string{"min_parallel_size", "thread_stack_size"},
}

func TestHeader(t *testing.T) {
	assert.Equal(t,
		[]string{"node_count", "program_name", "num_threads", "time"},
		bfsSchema.Header())
	assert.Equal(t,
		[]string{
			"array_size", "program_name", "num_threads",
			"min_parallel_size", "thread_stack_size", "time",
		},
		sortSchema.Header())
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "performance_data.csv")

	first := []Record{{Size: 10, Program: "serial_BFS", Threads: 1, Time: 1500}}
	second := []Record{{Size: 100, Program: "openmp_BFS", Threads: 8, Time: 2500.5}}

	require.NoError(t, Append(path, bfsSchema, first))
	require.NoError(t, Append(path, bfsSchema, second))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t,
		"node_count,program_name,num_threads,time\n"+
			"10,serial_BFS,1,1500\n"+
			"100,openmp_BFS,8,2500.5\n",
		string(data))
	assert.Equal(t, 1, strings.Count(string(data), "node_count"))
}

func TestAppendEmptyFileGetsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	require.NoError(t, Append(path, bfsSchema, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "node_count,program_name,num_threads,time\n", string(data))
}

func TestAppendRejectsForeignHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0o644))

	err := Append(path, bfsSchema, []Record{{Size: 1, Program: "p", Time: 1}})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c\n1,2,3\n", string(data))
}

func TestAppendParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sort.csv")

	records := []Record{
		{
			Size: 1000, Program: "serialMergeSort", Threads: 1,
			Params: []Param{
				{Name: "min_parallel_size", Value: 0},
				{Name: "thread_stack_size", Value: 0},
			},
			Time: 120.25,
		},
		{
			Size: 1000, Program: "parallelMergeSort", Threads: 4,
			Params: []Param{
				{Name: "min_parallel_size", Value: 10},
				{Name: "thread_stack_size", Value: 1 << 20},
			},
			Time: 80,
		},
	}

	require.NoError(t, Append(path, sortSchema, records))

	schema, got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, sortSchema, schema)
	assert.Equal(t, records, got)
}

func TestReadRoundTripNoParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bfs.csv")
	records := []Record{
		{Size: 10, Program: "serial_BFS", Threads: 1, Time: 1},
		{Size: 10, Program: "tholder_BFS", Threads: 8, Time: 0.5},
	}

	require.NoError(t, Append(path, bfsSchema, records))

	schema, got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, bfsSchema, schema)
	assert.Equal(t, records, got)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad header", "size,name,time\n"},
		{"bad size", "node_count,program_name,num_threads,time\nx,p,1,2\n"},
		{"bad time", "node_count,program_name,num_threads,time\n1,p,1,fast\n"},
		{"short row", "node_count,program_name,num_threads,time\n1,p\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestDecodePythonFloats(t *testing.T) {
	in := "node_count,program_name,num_threads,time\r\n" +
		"10,serial_BFS,1,1234.0\r\n"

	_, recs, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1234.0, recs[0].Time)
}
