// internal/handlers/remove-model/handler.go
package removemodel

import (
	"context"
	"fmt"
	"net/http"

	"ifc-api/internal/common/errors"
	commonhttp "ifc-api/internal/common/http"
	"ifc-api/internal/common/logger"
	"ifc-api/internal/common/observability"
)

const Route = "DELETE /remove-model/{model_id}"

type Handler struct {
	logger  logger.Logger
	service Executor
	errors  *errors.ErrorHandler
}

type HandlerOptions struct {
	Store         ModelRemover
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("invalid configuration for remove-model: store is required")
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}

	return &Handler{
		logger: loggerInstance,
		service: NewService(ServiceDependencies{
			Logger:        loggerInstance,
			Store:         opts.Store,
			Observability: opts.Observability,
		}),
		errors: errors.NewErrorHandler(loggerInstance),
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	input := &Input{ModelID: r.PathValue("model_id")}

	output, err := h.Execute(r.Context(), input)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	if err := commonhttp.WriteJSON(w, http.StatusOK, output); err != nil {
		h.logger.Warn("Failed to write response", map[string]interface{}{
			"route": Route,
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

func (h *Handler) GetRoute() string {
	return Route
}
