package decision

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Overrides forces verdicts for specific identifiers, e.g. for demos.
// Entries only apply to records that resolved against a registry; an
// unresolved identifier always stays Unknown.
type Overrides struct {
	verdicts map[string]Verdict
}

type overridesFile struct {
	Overrides map[string]overrideEntry `yaml:"overrides"`
}

type overrideEntry struct {
	Status     string   `yaml:"status"`
	Confidence int      `yaml:"confidence"`
	Issues     []string `yaml:"issues"`
}

// LoadOverrides reads a YAML override table. An empty path disables overrides.
//
//	overrides:
//	  MCI-556677:
//	    status: Verified
//	    confidence: 98
func LoadOverrides(path string) (*Overrides, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read verdict overrides: %w", err)
	}
	return ParseOverrides(data)
}

// ParseOverrides decodes and validates an override table.
func ParseOverrides(data []byte) (*Overrides, error) {
	var file overridesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode verdict overrides: %w", err)
	}

	verdicts := make(map[string]Verdict, len(file.Overrides))
	for id, entry := range file.Overrides {
		status, err := ParseStatus(entry.Status)
		if err != nil {
			return nil, fmt.Errorf("override %s: %w", id, err)
		}
		if status == StatusUnknown {
			return nil, fmt.Errorf("override %s: status Unknown cannot be forced", id)
		}
		issues := entry.Issues
		if issues == nil {
			issues = []string{}
		}
		verdicts[id] = Verdict{
			Status:     status,
			Confidence: clamp(entry.Confidence, 0, 100),
			Issues:     issues,
			Forced:     true,
		}
	}
	return &Overrides{verdicts: verdicts}, nil
}

// Lookup returns a copy of the forced verdict for identifier.
func (o *Overrides) Lookup(identifier string) (Verdict, bool) {
	if o == nil {
		return Verdict{}, false
	}
	v, ok := o.verdicts[identifier]
	if !ok {
		return Verdict{}, false
	}
	v.Issues = append([]string{}, v.Issues...)
	return v, true
}

func (o *Overrides) Len() int {
	if o == nil {
		return 0
	}
	return len(o.verdicts)
}
