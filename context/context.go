package context

import (
	"context"
	"fmt"
	"sync"

	fv "github.com/mechanik-daniel/flashonata"
	"github.com/mechanik-daniel/flashonata/definitions"
	"github.com/mechanik-daniel/flashonata/loader"
	"github.com/mechanik-daniel/flashonata/registry"
	"github.com/mechanik-daniel/flashonata/service"
	"github.com/mechanik-daniel/flashonata/terminology"
)

// SpecContext holds all version-specific resources a flash evaluation run
// needs: the StructureDefinitions behind a *definitions.Dictionary, and
// optionally a terminology service for binding-strength checks. It loads
// both from the FHIR package registry (packages.fhir.org by default).
type SpecContext struct {
	// Version is the FHIR version this context is configured for.
	Version fv.FHIRVersion

	// Profiles provides access to StructureDefinitions for profile resolution.
	Profiles service.ProfileResolver

	// Terminology provides code validation against CodeSystems and ValueSets.
	// This is nil if terminology loading was not enabled.
	Terminology service.TerminologyService

	// profileSvc is the concrete loader backing Profiles; kept alongside the
	// interface field so Dictionary can walk every StructureDefinition it
	// holds without widening the public ProfileResolver surface.
	profileSvc *loader.InMemoryProfileService

	// Options used to create this context.
	options Options

	// loaded indicates whether specs have been loaded.
	loaded bool

	// mu protects lazy loading operations.
	mu sync.RWMutex
}

// New creates a new SpecContext for the specified FHIR version, downloading
// its StructureDefinitions (and, if requested, terminology) from the FHIR
// package registry.
func New(ctx context.Context, version fv.FHIRVersion, opts Options) (*SpecContext, error) {
	sc := &SpecContext{
		Version: version,
		options: opts,
	}

	if err := sc.loadFromRegistry(ctx, version, opts); err != nil {
		return nil, fmt.Errorf("failed to load from registry: %w", err)
	}
	sc.loaded = true
	return sc, nil
}

// loadFromRegistry loads packages from the FHIR package registry.
func (sc *SpecContext) loadFromRegistry(ctx context.Context, version fv.FHIRVersion, opts Options) error {
	// Create registry client
	clientOpts := []registry.ClientOption{}
	if opts.CacheDir != "" {
		clientOpts = append(clientOpts, registry.WithCacheDir(opts.CacheDir))
	}
	client := registry.NewClient(clientOpts...)

	// Create resolver
	resolver := registry.NewResolver(client)

	// Parse additional packages
	additionalPkgs := make([]registry.PackageRef, 0, len(opts.AdditionalPackages))
	for _, pkg := range opts.AdditionalPackages {
		ref := parsePackageRef(pkg)
		additionalPkgs = append(additionalPkgs, ref)
	}

	// Resolve packages
	resolveOpts := registry.ResolveOptions{
		IncludeTerminology: opts.LoadTerminology,
		IncludeExtensions:  false,
		AdditionalPackages: additionalPkgs,
	}

	resolved, err := resolver.Resolve(ctx, version, resolveOpts)
	if err != nil {
		return fmt.Errorf("failed to resolve packages: %w", err)
	}

	// Create services
	profileService := loader.NewInMemoryProfileService()
	var termService *terminology.InMemoryTerminologyService
	if opts.LoadTerminology {
		termService = terminology.NewInMemoryTerminologyService()
	}

	// Create loader
	pkgLoader := registry.NewPackageLoader(profileService, termService)

	// Load packages - always use LoadPackages for proper ordering
	// (CodeSystems must be loaded before ValueSets for filter expansion)
	stats, err := pkgLoader.LoadPackages(resolved)
	if err != nil {
		return fmt.Errorf("failed to load packages: %w", err)
	}

	sc.Profiles = profileService
	sc.profileSvc = profileService
	if termService != nil {
		sc.Terminology = termService
	}

	_ = stats // Can be used for logging
	return nil
}

// Dictionary resolves every StructureDefinition this context has loaded into
// a *definitions.Dictionary, the shape a flash.Evaluator consults. Call it
// once after New (or after LoadIG/LoadIGFromBytes add more definitions) and
// hand the result to flash.NewEvaluator.
func (sc *SpecContext) Dictionary() (*definitions.Dictionary, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	if sc.profileSvc == nil {
		return nil, fmt.Errorf("no StructureDefinitions loaded")
	}
	return loader.BuildDictionary(sc.profileSvc.All())
}

// parsePackageRef parses a package reference string like "name@version".
func parsePackageRef(s string) registry.PackageRef {
	parts := splitAtSign(s)
	if len(parts) == 2 {
		return registry.PackageRef{Name: parts[0], Version: parts[1]}
	}
	return registry.PackageRef{Name: s, Version: "latest"}
}

// splitAtSign splits a string at the last @ sign.
func splitAtSign(s string) []string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '@' {
			return []string{s[:i], s[i+1:]}
		}
	}
	return []string{s}
}

// LoadIG loads an Implementation Guide from a directory into this context.
// The IG's StructureDefinitions are added to the profile resolver.
func (sc *SpecContext) LoadIG(dirPath string) (int, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	profileService, ok := sc.Profiles.(*loader.InMemoryProfileService)
	if !ok {
		return 0, fmt.Errorf("cannot load IG: profile service does not support dynamic loading")
	}

	return profileService.LoadFromDirectory(dirPath)
}

// LoadIGFromBytes loads an Implementation Guide from a Bundle JSON byte slice.
func (sc *SpecContext) LoadIGFromBytes(data []byte) (int, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	profileService, ok := sc.Profiles.(*loader.InMemoryProfileService)
	if !ok {
		return 0, fmt.Errorf("cannot load IG: profile service does not support dynamic loading")
	}

	return profileService.LoadFromJSON(data)
}

// IsLoaded returns true if specs have been loaded.
func (sc *SpecContext) IsLoaded() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.loaded
}

// HasTerminology returns true if terminology service is available.
func (sc *SpecContext) HasTerminology() bool {
	return sc.Terminology != nil
}

