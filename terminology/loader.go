package terminology

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofhir/fhir/r4"
)

// LoadStats contains statistics about terminology loading.
type LoadStats struct {
	CodeSystemsLoaded int64
	ValueSetsLoaded   int64
	Errors            int64
}

// LoadFromFS loads CodeSystems and ValueSets named v3CodeSystemsFile and
// valueSetsFile out of an fs.FS rooted at dir. This is how a package's IG
// content directory (already opened as an fs.FS by the caller) feeds its
// terminology bundles in, without this package needing to know whether the
// files came from disk or from a Go embed.FS.
func (s *InMemoryTerminologyService) LoadFromFS(fsys fs.FS, dir, v3CodeSystemsFile, valueSetsFile string) (*LoadStats, error) {
	stats := &LoadStats{}

	if csData, err := fs.ReadFile(fsys, filepath.Join(dir, v3CodeSystemsFile)); err == nil {
		csLoaded, csErrors := s.loadCodeSystemsFromBundle(csData)
		stats.CodeSystemsLoaded += csLoaded
		stats.Errors += csErrors
	}

	if vsData, err := fs.ReadFile(fsys, filepath.Join(dir, valueSetsFile)); err == nil {
		vsLoaded, vsErrors := s.loadValueSetsFromBundle(vsData)
		stats.ValueSetsLoaded += vsLoaded
		stats.Errors += vsErrors
	}

	return stats, nil
}

// LoadFromJSON loads CodeSystems or ValueSets from JSON data.
// Auto-detects Bundle vs single resource format.
func (s *InMemoryTerminologyService) LoadFromJSON(data []byte) (*LoadStats, error) {
	stats := &LoadStats{}

	// Detect resource type
	var probe struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch probe.ResourceType {
	case "Bundle":
		// Try loading as CodeSystems first
		csLoaded, _ := s.loadCodeSystemsFromBundle(data)
		stats.CodeSystemsLoaded += csLoaded

		// Then try ValueSets
		vsLoaded, _ := s.loadValueSetsFromBundle(data)
		stats.ValueSetsLoaded += vsLoaded

	case "CodeSystem":
		var cs r4.CodeSystem
		if err := json.Unmarshal(data, &cs); err != nil {
			return nil, fmt.Errorf("failed to parse CodeSystem: %w", err)
		}
		if err := s.LoadR4CodeSystem(&cs); err != nil {
			stats.Errors++
			return stats, err
		}
		stats.CodeSystemsLoaded++

	case "ValueSet":
		var vs r4.ValueSet
		if err := json.Unmarshal(data, &vs); err != nil {
			return nil, fmt.Errorf("failed to parse ValueSet: %w", err)
		}
		if err := s.LoadR4ValueSet(&vs); err != nil {
			stats.Errors++
			return stats, err
		}
		stats.ValueSetsLoaded++

	default:
		return nil, fmt.Errorf("unsupported resourceType: %s", probe.ResourceType)
	}

	return stats, nil
}

// LoadFromDirectory loads CodeSystems and ValueSets from a directory.
// This is useful for loading terminology from IG packages.
// CodeSystems are loaded before ValueSets to ensure filter expansion works.
func (s *InMemoryTerminologyService) LoadFromDirectory(dirPath string) (*LoadStats, error) {
	stats := &LoadStats{}

	// Check if directory exists
	info, err := os.Stat(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dirPath)
	}

	// Read all JSON files
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	// Separate files by type for ordered loading
	// CodeSystems must be loaded before ValueSets for filter expansion
	var codeSystems, valueSets []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		// Skip package metadata files
		if entry.Name() == "package.json" || entry.Name() == ".index.json" {
			continue
		}

		filePath := filepath.Join(dirPath, entry.Name())
		name := entry.Name()

		// Categorize by filename prefix (FHIR packages use consistent naming)
		switch {
		case strings.HasPrefix(name, "CodeSystem-"):
			codeSystems = append(codeSystems, filePath)
		case strings.HasPrefix(name, "ValueSet-"):
			valueSets = append(valueSets, filePath)
		}
	}

	// Load CodeSystems first
	for _, filePath := range codeSystems {
		data, err := os.ReadFile(filePath)
		if err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			continue
		}

		var cs r4.CodeSystem
		if err := json.Unmarshal(data, &cs); err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			continue
		}

		if err := s.LoadR4CodeSystem(&cs); err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			continue
		}
		atomic.AddInt64(&stats.CodeSystemsLoaded, 1)
	}

	// Then load ValueSets
	for _, filePath := range valueSets {
		data, err := os.ReadFile(filePath)
		if err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			continue
		}

		var vs r4.ValueSet
		if err := json.Unmarshal(data, &vs); err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			continue
		}

		if err := s.LoadR4ValueSet(&vs); err != nil {
			atomic.AddInt64(&stats.Errors, 1)
			continue
		}
		atomic.AddInt64(&stats.ValueSetsLoaded, 1)
	}

	return stats, nil
}

// bundleEntry represents an entry in a FHIR Bundle.
type bundleEntry struct {
	Resource json.RawMessage `json:"resource"`
}

// bundle represents a minimal FHIR Bundle structure.
type bundle struct {
	ResourceType string        `json:"resourceType"`
	Entry        []bundleEntry `json:"entry"`
}

// resourceLoader is a function type for loading a specific resource type.
type resourceLoader func(data json.RawMessage) error

// loadResourcesFromBundle is a generic function to load resources from a Bundle JSON.
func loadResourcesFromBundle(data []byte, targetType string, loader resourceLoader) (loaded, errors int64) {
	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return 0, 1
	}

	if b.ResourceType != "Bundle" {
		return 0, 1
	}

	for _, entry := range b.Entry {
		if entry.Resource == nil {
			continue
		}

		var probe struct {
			ResourceType string `json:"resourceType"`
		}
		if err := json.Unmarshal(entry.Resource, &probe); err != nil {
			continue
		}

		if probe.ResourceType != targetType {
			continue
		}

		if err := loader(entry.Resource); err != nil {
			errors++
			continue
		}
		loaded++
	}

	return loaded, errors
}

// loadCodeSystemsFromBundle loads CodeSystems from a Bundle JSON.
func (s *InMemoryTerminologyService) loadCodeSystemsFromBundle(data []byte) (loaded, errors int64) {
	return loadResourcesFromBundle(data, "CodeSystem", func(raw json.RawMessage) error {
		var cs r4.CodeSystem
		if err := json.Unmarshal(raw, &cs); err != nil {
			return err
		}
		return s.LoadR4CodeSystem(&cs)
	})
}

// loadValueSetsFromBundle loads ValueSets from a Bundle JSON.
func (s *InMemoryTerminologyService) loadValueSetsFromBundle(data []byte) (loaded, errors int64) {
	return loadResourcesFromBundle(data, "ValueSet", func(raw json.RawMessage) error {
		var vs r4.ValueSet
		if err := json.Unmarshal(raw, &vs); err != nil {
			return err
		}
		return s.LoadR4ValueSet(&vs)
	})
}
