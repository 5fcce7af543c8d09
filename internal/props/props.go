// Package props loads Java-style .properties files into the configuration
// mapping handed to the EL resolver.
//
// Files are applied in order and later values may reference earlier ones
// with ${...} placeholders; each value is substituted against everything
// accumulated so far.
package props

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/crossflow/pkg/el"
)

// Load reads the given files on top of the seed mapping and returns the
// merged result. The seed is not mutated.
func Load(seed map[string]string, paths ...string) (map[string]string, error) {
	merged := make(map[string]string, len(seed))
	for k, v := range seed {
		merged[k] = v
	}
	for _, path := range paths {
		if err := loadFile(merged, path); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// LoadIfExists behaves like Load but silently skips missing files, matching
// the optional configuration.properties convention.
func LoadIfExists(seed map[string]string, paths ...string) (map[string]string, error) {
	var present []string
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			present = append(present, path)
		}
	}
	return Load(seed, present...)
}

func loadFile(into map[string]string, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open properties file: %w", err)
	}
	defer f.Close()

	resolver := el.NewResolver(into)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("%s:%d: malformed property line %q", path, lineNo, line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		resolved, err := resolver.Interpolate(value)
		if err != nil {
			// Values referencing runtime-only expressions stay verbatim;
			// the transformer resolves them later if ever needed.
			resolved = value
		}
		into[key] = resolved
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read properties file %s: %w", path, err)
	}
	return nil
}
