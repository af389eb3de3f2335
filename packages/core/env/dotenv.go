package env

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// SettingPrefix marks variables that override run settings.
const SettingPrefix = "CONTRACTCHECK_"

// LegacyBaseURL is the base URL variable understood for compatibility with
// existing Cypress setups. CONTRACTCHECK_BASE_URL wins over it.
const LegacyBaseURL = "CYPRESS_BASE_URL"

// IsSetting reports whether key changes how a run is configured, as
// opposed to a variable only read by {{$NAME}} placeholders.
func IsSetting(key string) bool {
	return strings.HasPrefix(key, SettingPrefix) || key == LegacyBaseURL
}

// ParseDotEnv reads KEY=value lines. Blank lines and # comments are
// skipped, an optional "export " prefix is dropped, and one pair of
// matching single or double quotes around a value is removed. A line with
// no = is an error.
func ParseDotEnv(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open env file: %w", err)
	}
	defer file.Close()

	vars := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, found := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" || strings.ContainsAny(key, " \t") {
			return nil, fmt.Errorf("%s:%d: expected KEY=value", path, lineNo)
		}

		value = strings.TrimSpace(value)
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		vars[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}
	return vars, nil
}

// DotEnv is the outcome of exporting one env file.
type DotEnv struct {
	Path string
	Vars map[string]string
	// Exported lists keys now set from the file, sorted.
	Exported []string
	// Shadowed lists keys the file defines but the process environment
	// already had, so the file value was ignored. Sorted.
	Shadowed []string
	// Removed lists keys a previous load exported that the file no longer
	// defines; they have been unset again. Sorted.
	Removed []string
}

// Settings returns the exported and shadowed keys that affect run
// settings.
func (d *DotEnv) Settings() (exported, shadowed []string) {
	for _, k := range d.Exported {
		if IsSetting(k) {
			exported = append(exported, k)
		}
	}
	for _, k := range d.Shadowed {
		if IsSetting(k) {
			shadowed = append(shadowed, k)
		}
	}
	return exported, shadowed
}

// Exporter copies env files into the process environment. Variables set
// before the first load always win. Keys the Exporter set itself are
// updated or unset on later loads, so a watched file can be edited.
type Exporter struct {
	mu    sync.Mutex
	owned map[string]string
}

func NewExporter() *Exporter {
	return &Exporter{owned: make(map[string]string)}
}

// Load parses path and exports its variables.
func (e *Exporter) Load(path string) (*DotEnv, error) {
	vars, err := ParseDotEnv(path)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	result := &DotEnv{Path: path, Vars: vars}
	for k, v := range vars {
		current, set := os.LookupEnv(k)
		if prev, ours := e.owned[k]; set && (!ours || current != prev) {
			result.Shadowed = append(result.Shadowed, k)
			delete(e.owned, k)
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return nil, fmt.Errorf("exporting %s: %w", k, err)
		}
		e.owned[k] = v
		result.Exported = append(result.Exported, k)
	}
	for k, prev := range e.owned {
		if _, still := vars[k]; still {
			continue
		}
		if current, set := os.LookupEnv(k); set && current == prev {
			_ = os.Unsetenv(k)
		}
		delete(e.owned, k)
		result.Removed = append(result.Removed, k)
	}

	sort.Strings(result.Exported)
	sort.Strings(result.Shadowed)
	sort.Strings(result.Removed)
	return result, nil
}
