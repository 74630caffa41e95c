package settings

import (
	"os"

	"github.com/go-yaml/yaml"
	"github.com/pkg/errors"
)

type document struct {
	Searchgate Root `yaml:"searchgate"`
}

// Load reads the settings file. Rule-level problems are not surfaced here;
// they are detected block by block when the engine is built, so one broken
// block cannot take down the rest of the policy.
func Load(path string) (Root, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Root{}, errors.Wrap(err, "failed to open settings file")
	}
	return Parse(raw)
}

func Parse(raw []byte) (Root, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Root{}, errors.Wrap(err, "failed to parse settings")
	}

	root := doc.Searchgate

	seen := make(map[string]bool, len(root.Blocks))
	for _, b := range root.Blocks {
		if b.Name == "" {
			return Root{}, errors.New("access control rule with empty name")
		}
		if seen[b.Name] {
			return Root{}, errors.Errorf("duplicate access control rule name: %s", b.Name)
		}
		seen[b.Name] = true
	}

	return root, nil
}
