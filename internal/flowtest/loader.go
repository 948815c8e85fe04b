package flowtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var validModes = map[string]bool{
	"setup":  true,
	"import": true,
	"reauth": true,
}

var validKinds = map[string]bool{
	"form":    true,
	"created": true,
	"aborted": true,
	"error":   true,
}

// ParseScenario parses a scenario from YAML bytes.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	if sc.ID == "" {
		return nil, &LoadError{Message: "scenario ID is required"}
	}
	if !validModes[sc.Mode] {
		return nil, &LoadError{
			Message: fmt.Sprintf("scenario %s: unknown mode %q", sc.ID, sc.Mode),
		}
	}
	if sc.Mode == "reauth" && sc.Existing == nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("scenario %s: reauth requires an existing entry", sc.ID),
		}
	}
	if len(sc.Steps) == 0 {
		return nil, &LoadError{
			Message: fmt.Sprintf("scenario %s: at least one step is required", sc.ID),
		}
	}
	for i, step := range sc.Steps {
		if !validKinds[step.Expect.Kind] {
			return nil, &LoadError{
				Message: fmt.Sprintf("scenario %s: step %d: unknown expect kind %q", sc.ID, i, step.Expect.Kind),
			}
		}
	}

	return &sc, nil
}

// LoadScenario loads a scenario from a file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	sc, err := ParseScenario(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}

	return sc, nil
}

// LoadDirectory loads all scenarios from a directory. Only files with
// .yaml or .yml extensions are loaded.
func LoadDirectory(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	var scenarios []*Scenario
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		sc, err := LoadScenario(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}

	return scenarios, nil
}
