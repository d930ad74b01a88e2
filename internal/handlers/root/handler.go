// internal/handlers/root/handler.go
package root

import (
	"fmt"
	"net/http"

	commonhttp "ifc-api/internal/common/http"
	"ifc-api/internal/common/logger"
	"ifc-api/pkg/registry"
)

const Route = "GET /{$}"

// Output is the discovery document served at "/".
type Output struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

type Handler struct {
	logger logger.Logger
	output *Output
}

type HandlerOptions struct {
	Registry *registry.EndpointRegistry
	Logger   logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	reg := opts.Registry
	if reg == nil {
		reg = registry.Default()
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid endpoint registry: %w", err)
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}

	return &Handler{
		logger: loggerInstance,
		output: &Output{
			Message:   reg.Service,
			Endpoints: reg.Catalog(),
		},
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := commonhttp.WriteJSON(w, http.StatusOK, h.output); err != nil {
		h.logger.Warn("Failed to write response", map[string]interface{}{
			"route": Route,
			"error": err.Error(),
		})
	}
}

func (h *Handler) GetRoute() string {
	return Route
}
