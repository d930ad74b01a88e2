// pkg/registry/schema.go
package registry

// EndpointRegistry describes the public HTTP surface. The discovery root is
// rendered from it.
type EndpointRegistry struct {
	Version   string     `json:"version"`
	Service   string     `json:"service"`
	Endpoints []Endpoint `json:"endpoints"`
}

type Endpoint struct {
	ID          string   `json:"id"`
	Method      string   `json:"method"`
	Path        string   `json:"path"`
	Summary     string   `json:"summary"`
	Package     string   `json:"package"`
	ErrorCodes  []string `json:"errorCodes"`
	Operational bool     `json:"operational,omitempty"`
}

// Key returns the "METHOD /path" form used by the discovery root.
func (e Endpoint) Key() string {
	return e.Method + " " + e.Path
}
