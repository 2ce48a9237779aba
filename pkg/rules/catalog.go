package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog maps each rule kind to the packet key its result payload arrives
// under. The defaults match the engine's current schema; a YAML file can
// override them when the engine renames a key ahead of us.
type Catalog struct {
	ResultKeys map[string]string `yaml:"resultKeys" json:"resultKeys"`
}

func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, err
	}
	if len(cat.ResultKeys) == 0 {
		return Catalog{}, fmt.Errorf("rule catalog empty")
	}
	for kind := range cat.ResultKeys {
		if !RuleKind(strings.ToUpper(kind)).IsValid() {
			return Catalog{}, fmt.Errorf("rule catalog names unknown kind %q", kind)
		}
	}
	return cat, nil
}

func DefaultCatalog() Catalog {
	return Catalog{ResultKeys: map[string]string{
		string(KindRate):          "rateResult",
		string(KindBasis):         "basisResult",
		string(KindPeriod):        "periodResult",
		string(KindMinimumIncome): "minimumIncomeResult",
	}}
}

func (c Catalog) ResultKey(kind RuleKind) (string, error) {
	if key, ok := c.ResultKeys[string(kind)]; ok && key != "" {
		return key, nil
	}
	if key, ok := c.ResultKeys[strings.ToLower(string(kind))]; ok && key != "" {
		return key, nil
	}
	return "", fmt.Errorf("no result key configured for rule kind %q", kind)
}
