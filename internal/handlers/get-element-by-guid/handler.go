// internal/handlers/get-element-by-guid/handler.go
package getelementbyguid

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ifc-api/internal/common/config"
	"ifc-api/internal/common/errors"
	commonhttp "ifc-api/internal/common/http"
	"ifc-api/internal/common/logger"
	"ifc-api/internal/common/validation"
	"ifc-api/internal/engine"
)

const Route = "POST /get-element-by-guid"

type Handler struct {
	config  *Config
	logger  logger.Logger
	service Executor
	errors  *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Store        ModelGetter
	Engine       engine.Engine
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	handlerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := handlerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for get-element-by-guid: %w", err)
	}
	if opts.Store == nil || opts.Engine == nil {
		return nil, fmt.Errorf("invalid configuration for get-element-by-guid: store and engine are required")
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}

	return &Handler{
		config: handlerConfig,
		logger: loggerInstance,
		service: NewService(ServiceDependencies{
			Logger: loggerInstance,
			Store:  opts.Store,
			Engine: opts.Engine,
		}),
		errors: errors.NewErrorHandler(loggerInstance),
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	input, err := h.parseInput(w, r)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}

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

func (h *Handler) parseInput(w http.ResponseWriter, r *http.Request) (*Input, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.NewPayloadTooLargeError(h.config.MaxBodyBytes)
		}
		return nil, errors.NewInvalidRequestError("Failed to read request body", err.Error())
	}

	result := validation.ValidateJSON(body, GetInputSchema())
	if !result.Valid {
		messages := result.GetErrorMessages()
		return nil, errors.NewInvalidRequestError(
			"Input validation failed: "+strings.Join(messages, "; "),
			fmt.Sprintf("Validation errors: %v", messages),
		)
	}

	var input Input
	if err := json.Unmarshal(body, &input); err != nil {
		return nil, errors.NewInvalidRequestError("Input validation failed", err.Error())
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}

func (h *Handler) GetRoute() string {
	return Route
}

func (h *Handler) GetConfig() *Config {
	return h.config
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig != nil && appConfig.Server.MaxUploadBytes > 0 && appConfig.Server.MaxUploadBytes < cfg.MaxBodyBytes {
		cfg.MaxBodyBytes = appConfig.Server.MaxUploadBytes
	}
	return cfg
}
