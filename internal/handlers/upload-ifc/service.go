package uploadifc

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"ifc-api/internal/common/errors"
	"ifc-api/internal/common/logger"
	"ifc-api/internal/common/observability"
	"ifc-api/internal/engine"
	"ifc-api/internal/store"
)

type Service struct {
	config *Config
	logger logger.Logger
	store  ModelCreator
	engine engine.Engine
	obs    *observability.Observability
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		logger: deps.Logger,
		store:  deps.Store,
		engine: deps.Engine,
		obs:    deps.Observability,
	}
}

// Execute keeps a copy of the upload on disk for the lifetime of the model,
// opens it and registers the result. The scratch file is removed again on
// every failure after it was written.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	path, written, err := store.WriteScratch(s.config.ScratchDir, bytes.NewReader(input.Content))
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	start := time.Now()
	model, err := s.engine.Open(ctx, input.Content)
	elapsed := time.Since(start)
	if err != nil {
		status := "failure"
		if stderrors.Is(err, engine.ErrEngineBusy) {
			status = "busy"
		}
		s.obs.RecordModelProcessed(ctx, status)
		s.obs.RecordParseDuration(ctx, elapsed, status)

		if rmErr := store.RemoveScratch(path); rmErr != nil {
			s.logger.Warn("Failed to remove scratch file", map[string]interface{}{
				"path":  path,
				"error": rmErr.Error(),
			})
		}

		s.logger.Warn("Failed to open uploaded model", map[string]interface{}{
			"filename": input.Filename,
			"bytes":    written,
			"status":   status,
			"error":    err.Error(),
		})
		if status == "busy" {
			return nil, errors.NewEngineBusyError(err)
		}
		return nil, errors.NewEngineOpenFailedError(err)
	}

	modelID := s.store.Create(model, input.Filename, path)
	s.obs.RecordModelProcessed(ctx, "success")
	s.obs.RecordParseDuration(ctx, elapsed, "success")

	projectName, found := s.engine.ProjectName(model)
	if !found {
		name := unknownProject
		projectName = &name
	}
	total := s.engine.ProductCount(model)

	s.logger.Info("Model uploaded", map[string]interface{}{
		"modelId":       modelID,
		"filename":      input.Filename,
		"schema":        model.Schema(),
		"bytes":         written,
		"totalElements": total,
		"duration":      fmt.Sprintf("%dms", elapsed.Milliseconds()),
	})

	return &Output{
		ModelID:       modelID,
		Filename:      input.Filename,
		ProjectName:   projectName,
		TotalElements: total,
		Message:       successMessage,
	}, nil
}
