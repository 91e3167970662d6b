package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// DiscoverScenarios lists the *.yaml scenario files in dir, sorted.
func DiscoverScenarios(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scenario directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	return paths, nil
}

// RunDir loads and runs every scenario in dir. Results are keyed by
// scenario name.
func RunDir(dir string) (map[string]*Result, error) {
	paths, err := DiscoverScenarios(dir)
	if err != nil {
		return nil, err
	}
	results := make(map[string]*Result, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if _, dup := results[s.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate scenario name %q", path, s.Name)
		}
		r, err := Run(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		results[s.Name] = r
	}
	return results, nil
}
