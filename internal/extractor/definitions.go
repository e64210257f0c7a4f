package extractor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"logbridge/internal/domain/entity"
)

// DefaultDefinitions returns the compiled-in metric definitions. Keys must
// match the trapper items configured on the Zabbix host.
//
// mos.rating uses a word boundary so that "actual_mos=" lines reported by the
// CDR trapper are not also counted as probe MOS readings.
func DefaultDefinitions() []entity.MetricDefinition {
	return []entity.MetricDefinition{
		entity.MustMetricDefinition("mos.rating", `\bmos=(\d+\.?\d*)`),
		entity.MustMetricDefinition("voip.latency", `rtt=(\d+\.?\d*)`),
		entity.MustMetricDefinition("voip.jitter", `jitter=(\d+\.?\d*)`),
		entity.MustMetricDefinition("voip.loss", `loss=(\d+\.?\d*)`),
		entity.MustMetricDefinition("mos.actual", `actual_mos=(\d+\.?\d*)`),
	}
}

// metricFile is the YAML shape of an external metric definition file:
//
//	metrics:
//	  - key: mos.rating
//	    pattern: mos=(\d+\.?\d*)
type metricFile struct {
	Metrics []struct {
		Key     string `yaml:"key"`
		Pattern string `yaml:"pattern"`
	} `yaml:"metrics"`
}

// LoadDefinitions reads metric definitions from a YAML file, replacing the
// defaults. File order becomes extraction order. Duplicate keys, empty files,
// and invalid patterns are startup errors.
func LoadDefinitions(path string) ([]entity.MetricDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metric config: %w", err)
	}

	var file metricFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse metric config %s: %w", path, err)
	}
	if len(file.Metrics) == 0 {
		return nil, fmt.Errorf("metric config %s defines no metrics", path)
	}

	defs := make([]entity.MetricDefinition, 0, len(file.Metrics))
	seen := make(map[string]struct{}, len(file.Metrics))
	for _, m := range file.Metrics {
		def, err := entity.NewMetricDefinition(m.Key, m.Pattern)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[def.Key]; dup {
			return nil, fmt.Errorf("metric config %s: duplicate key %q", path, def.Key)
		}
		seen[def.Key] = struct{}{}
		defs = append(defs, def)
	}
	return defs, nil
}
