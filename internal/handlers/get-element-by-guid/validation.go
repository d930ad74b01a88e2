package getelementbyguid

import "ifc-api/internal/common/validation"

// GetInputSchema accepts unknown fields so clients may send extra context.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"model_id", "guid"},
		Properties: map[string]validation.Property{
			"model_id": {
				Type:        "string",
				Description: "Identifier returned by the upload endpoint",
			},
			"guid": {
				Type:        "string",
				Description: "IFC GlobalId of the element",
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"guid", "name", "type", "properties", "psets"},
		Properties: map[string]validation.Property{
			"guid": {
				Type:        "string",
				Description: "IFC GlobalId of the element",
				MinLength:   intPtr(22),
				MaxLength:   intPtr(22),
			},
			"name": {
				Description: "Element name, null when unset",
			},
			"type": {
				Type:        "string",
				Description: "IFC entity type",
				MinLength:   intPtr(1),
			},
			"properties": {
				Type:        "object",
				Description: "ObjectType, Tag and Description",
			},
			"psets": {
				Type:        "object",
				Description: "Property sets keyed by name, plus Quantities",
			},
		},
		AdditionalProperties: false,
	}
}

func intPtr(i int) *int {
	return &i
}
