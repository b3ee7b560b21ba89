// Package loader provides functionality to load FHIR resources and convert them
// to the internal service models and the definitions.Dictionary used by the
// flash evaluator.
//
// The loader package bridges the gap between the full r4 FHIR models and the
// simplified internal models.
//
// Key components:
//   - R4Converter: Converts an r4 StructureDefinition to service.StructureDefinition
//   - InMemoryProfileService: Loads and serves StructureDefinitions from files,
//     bundles, directories or r4 values
//   - BuildDictionary: Builds a definitions.Dictionary from service.StructureDefinitions
//
// Example usage:
//
//	// Create an R4 converter
//	converter := loader.NewR4Converter()
//
//	// Convert a StructureDefinition
//	serviceDef := converter.ConvertStructureDefinition(r4StructDef)
//
//	// Create a profile service and load r4 definitions into it
//	profileService := loader.NewInMemoryProfileService()
//	err := profileService.LoadR4StructureDefinitions(structDefs)
//
//	// Build the dictionary the evaluator consults
//	dict, err := loader.BuildDictionary(profileService.All())
package loader
