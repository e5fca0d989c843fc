package helm

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
	"helm.sh/helm/v3/pkg/chartutil"
	"helm.sh/helm/v3/pkg/strvals"
)

// Values represents helm chart values as a map.
type Values map[string]any

// ToYAML converts values to YAML bytes.
func (v Values) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode values to YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// ResolveValues merges the unit values. Later sources win: values files,
// then generated files, then set values. Relative values file paths are
// resolved from the working directory.
func (c *ChartInfo) ResolveValues() (Values, error) {
	merged := map[string]any{}

	for _, file := range c.ValuesFiles {
		vals, err := chartutil.ReadValuesFile(file)
		if err != nil {
			return nil, fmt.Errorf("chart %s: failed to read values file %s: %w", c.Name, file, err)
		}
		merged = chartutil.CoalesceTables(vals.AsMap(), merged)
	}

	for _, gen := range c.GeneratedValues {
		vals, err := chartutil.ReadValues([]byte(gen.Content))
		if err != nil {
			return nil, fmt.Errorf("chart %s: failed to parse generated values %s: %w", c.Name, gen.Filename, err)
		}
		merged = chartutil.CoalesceTables(vals.AsMap(), merged)
	}

	for _, v := range c.Values {
		parse := strvals.ParseInto
		if v.AsString {
			parse = strvals.ParseIntoString
		}
		if err := parse(v.String(), merged); err != nil {
			return nil, fmt.Errorf("chart %s: failed to parse value %s: %w", c.Name, v.Key, err)
		}
	}

	return Values(merged), nil
}
