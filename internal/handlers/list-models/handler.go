// internal/handlers/list-models/handler.go
package listmodels

import (
	"context"
	"net/http"

	"ifc-api/internal/common/errors"
	commonhttp "ifc-api/internal/common/http"
	"ifc-api/internal/common/logger"
	"ifc-api/internal/store"
)

const Route = "GET /models"

// ModelLister is the store view this endpoint needs.
type ModelLister interface {
	List() []store.Summary
}

type Handler struct {
	logger logger.Logger
	store  ModelLister
	errors *errors.ErrorHandler
}

type HandlerOptions struct {
	Store  ModelLister
	Logger logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.Store == nil {
		return nil, errStoreRequired
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}

	return &Handler{
		logger: loggerInstance,
		store:  opts.Store,
		errors: errors.NewErrorHandler(loggerInstance),
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	output, err := h.Execute(r.Context())
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

func (h *Handler) Execute(_ context.Context) (*Output, error) {
	models := h.store.List()
	h.logger.Debug("Listed models", map[string]interface{}{
		"count": len(models),
	})
	return &Output{Models: models}, nil
}

func (h *Handler) GetRoute() string {
	return Route
}
