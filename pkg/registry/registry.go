// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const ServiceName = "BIM IFC API Server"

// Default returns the endpoints served by ifc-server.
func Default() *EndpointRegistry {
	return &EndpointRegistry{
		Version: "1.0.0",
		Service: ServiceName,
		Endpoints: []Endpoint{
			{
				ID:         "upload-ifc",
				Method:     "POST",
				Path:       "/upload-ifc",
				Summary:    "Upload IFC file",
				Package:    "internal/handlers/upload-ifc",
				ErrorCodes: []string{"INVALID_REQUEST", "PAYLOAD_TOO_LARGE", "RATE_LIMITED", "ENGINE_BUSY", "ENGINE_OPEN_FAILED"},
			},
			{
				ID:         "get-element-by-guid",
				Method:     "POST",
				Path:       "/get-element-by-guid",
				Summary:    "Get element details by GUID",
				Package:    "internal/handlers/get-element-by-guid",
				ErrorCodes: []string{"INVALID_REQUEST", "MODEL_NOT_FOUND", "ELEMENT_NOT_FOUND", "ELEMENT_RETRIEVAL_FAILED"},
			},
			{
				ID:         "remove-model",
				Method:     "DELETE",
				Path:       "/remove-model/{model_id}",
				Summary:    "Remove model",
				Package:    "internal/handlers/remove-model",
				ErrorCodes: []string{"MODEL_NOT_FOUND", "MODEL_REMOVE_FAILED"},
			},
			{
				ID:         "list-models",
				Method:     "GET",
				Path:       "/models",
				Summary:    "List loaded models",
				Package:    "internal/handlers/list-models",
				ErrorCodes: []string{},
			},
			{ID: "health", Method: "GET", Path: "/health", Summary: "Liveness probe", Package: "internal/common/server", Operational: true},
			{ID: "ready", Method: "GET", Path: "/ready", Summary: "Readiness probe", Package: "internal/common/server", Operational: true},
		},
	}
}

func LoadRegistry(path string) (*EndpointRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg EndpointRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Catalog maps "METHOD /path" to the summary of every public endpoint.
func (r *EndpointRegistry) Catalog() map[string]string {
	out := make(map[string]string, len(r.Endpoints))
	for _, e := range r.Endpoints {
		if e.Operational {
			continue
		}
		out[e.Key()] = e.Summary
	}
	return out
}

// Lookup returns the endpoint with the given id.
func (r *EndpointRegistry) Lookup(id string) (Endpoint, bool) {
	for _, e := range r.Endpoints {
		if e.ID == id {
			return e, true
		}
	}
	return Endpoint{}, false
}

func (r *EndpointRegistry) Validate() error {
	if r.Service == "" {
		return fmt.Errorf("registry missing required field: service")
	}
	if len(r.Endpoints) == 0 {
		return fmt.Errorf("registry contains no endpoints")
	}

	ids := make(map[string]bool)
	keys := make(map[string]bool)
	for _, e := range r.Endpoints {
		if e.ID == "" {
			return fmt.Errorf("endpoint missing required field: id")
		}
		if ids[e.ID] {
			return fmt.Errorf("duplicate endpoint id: %s", e.ID)
		}
		ids[e.ID] = true

		switch e.Method {
		case "GET", "POST", "PUT", "PATCH", "DELETE":
		default:
			return fmt.Errorf("endpoint %s has unsupported method %q", e.ID, e.Method)
		}
		if !strings.HasPrefix(e.Path, "/") {
			return fmt.Errorf("endpoint %s path must start with '/'", e.ID)
		}
		if keys[e.Key()] {
			return fmt.Errorf("duplicate route: %s", e.Key())
		}
		keys[e.Key()] = true

		if e.Summary == "" {
			return fmt.Errorf("endpoint %s missing required field: summary", e.ID)
		}
	}
	return nil
}
