// internal/handlers/upload-ifc/handler.go
package uploadifc

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"ifc-api/internal/common/config"
	"ifc-api/internal/common/errors"
	commonhttp "ifc-api/internal/common/http"
	"ifc-api/internal/common/logger"
	"ifc-api/internal/common/metrics"
	"ifc-api/internal/common/observability"
	"ifc-api/internal/engine"

	"golang.org/x/time/rate"
)

const (
	Route = "POST /upload-ifc"

	fileField = "file"
	// multipartOverhead is the allowance for boundaries and part headers on
	// top of the file size limit.
	multipartOverhead = 64 << 10
)

type Handler struct {
	config  *Config
	logger  logger.Logger
	limiter *rate.Limiter
	service Executor
	errors  *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Store         ModelCreator
	Engine        engine.Engine
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	handlerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := handlerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for upload-ifc: %w", err)
	}
	if opts.Store == nil || opts.Engine == nil {
		return nil, fmt.Errorf("invalid configuration for upload-ifc: store and engine are required")
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}

	handler := &Handler{
		config: handlerConfig,
		logger: loggerInstance,
		errors: errors.NewErrorHandler(loggerInstance),
	}
	if handlerConfig.RatePerSecond > 0 {
		handler.limiter = rate.NewLimiter(rate.Limit(handlerConfig.RatePerSecond), handlerConfig.Burst)
	}

	handler.service = NewService(ServiceDependencies{
		Logger:        loggerInstance,
		Store:         opts.Store,
		Engine:        opts.Engine,
		Observability: opts.Observability,
	}, handler.config)

	return handler, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow() {
		h.errors.HandleHTTPError(w, r, errors.NewRateLimitedError())
		return
	}

	input, err := h.parseInput(w, r)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	metrics.UploadBytes.Observe(float64(len(input.Content)))

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

// parseInput streams the multipart body until the file part and reads it
// whole. Parts before it are skipped.
func (h *Handler) parseInput(w http.ResponseWriter, r *http.Request) (*Input, error) {
	limit := h.config.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errors.NewInvalidRequestError("Field 'file' is required", err.Error())
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, errors.NewInvalidRequestError("Field 'file' is required", "no file part in multipart body")
		}
		if err != nil {
			return nil, h.readError(err)
		}
		if part.FormName() != fileField {
			_ = part.Close()
			continue
		}

		content, err := io.ReadAll(io.LimitReader(part, limit+1))
		_ = part.Close()
		if err != nil {
			return nil, h.readError(err)
		}
		if int64(len(content)) > limit {
			return nil, errors.NewPayloadTooLargeError(limit)
		}
		return &Input{Filename: part.FileName(), Content: content}, nil
	}
}

func (h *Handler) readError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.NewPayloadTooLargeError(h.config.MaxUploadBytes)
	}
	return errors.NewInvalidRequestError("Malformed multipart body", err.Error())
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

	if appConfig != nil {
		if appConfig.Server.MaxUploadBytes > 0 {
			cfg.MaxUploadBytes = appConfig.Server.MaxUploadBytes
		}
		if appConfig.Storage.ScratchDir != "" {
			cfg.ScratchDir = appConfig.Storage.ScratchDir
		}
		cfg.RatePerSecond = appConfig.Uploads.RatePerSecond
		if appConfig.Uploads.Burst > 0 {
			cfg.Burst = appConfig.Uploads.Burst
		}
	}

	return cfg
}
