package suite

import (
	"encoding/json"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Load reads a YAML suite file. When the file sets base, the named
// preset is loaded first and the file's fields are layered on top;
// lists in the file replace the preset's lists.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite %s: %w", path, err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse suite %s: %w", path, err)
	}

	return s, nil
}

// Parse decodes a suite from YAML. Unknown fields are rejected. The
// result is not validated, so callers may still override fields.
func Parse(data []byte) (*Suite, error) {
	doc, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(doc, &keys); err != nil {
		return nil, fmt.Errorf("suite must be a mapping: %w", err)
	}

	s := &Suite{Runs: DefaultRuns, Threads: 1, Chart: Chart{TimeDivisor: 1}}

	if raw, ok := keys["base"]; ok {
		var base string
		if err := json.Unmarshal(raw, &base); err != nil {
			return nil, fmt.Errorf("base: %w", err)
		}

		if s, err = Preset(base); err != nil {
			return nil, err
		}
	}

	// Decoding into a populated slice reuses its elements, so drop the
	// preset's lists the file redefines.
	lists := map[string]func(){
		"sizes":    func() { s.Sizes = nil },
		"programs": func() { s.Programs = nil },
		"params":   func() { s.Params = nil },
		"build":    func() { s.Build = nil },
	}
	for key, reset := range lists {
		if _, ok := keys[key]; ok {
			reset()
		}
	}

	if err := yaml.UnmarshalStrict(data, s); err != nil {
		return nil, err
	}

	if s.Output.CSV == "" {
		s.Output.CSV = DefaultCSV
	}

	if s.Output.Plot == "" {
		s.Output.Plot = DefaultPlot
	}

	return s, nil
}
