package getelementbyguid

import (
	"context"
	stderrors "errors"
	"fmt"

	"ifc-api/internal/common/errors"
	"ifc-api/internal/common/logger"
	"ifc-api/internal/engine"
	"ifc-api/internal/projector"
	"ifc-api/internal/store"
)

type Service struct {
	logger    logger.Logger
	store     ModelGetter
	engine    engine.Engine
	projector *projector.Projector
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{
		logger:    deps.Logger,
		store:     deps.Store,
		engine:    deps.Engine,
		projector: projector.New(deps.Engine),
	}
}

func (s *Service) Execute(_ context.Context, input *Input) (output *Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = errors.NewElementRetrievalFailedError(fmt.Errorf("%v", r))
		}
	}()

	entry, err := s.store.Get(input.ModelID)
	if err != nil {
		if stderrors.Is(err, store.ErrModelNotFound) {
			return nil, errors.NewModelNotFoundError(input.ModelID)
		}
		return nil, errors.NewElementRetrievalFailedError(err)
	}

	el, err := s.engine.LookupByGUID(entry.Model, input.GUID)
	if err != nil {
		if stderrors.Is(err, engine.ErrElementNotFound) {
			return nil, errors.NewElementNotFoundError(input.GUID)
		}
		return nil, errors.NewElementRetrievalFailedError(err)
	}

	view, degraded := s.projector.Project(el)
	if degraded.Any() {
		s.logger.Warn("Element view degraded", map[string]interface{}{
			"modelId":    input.ModelID,
			"guid":       input.GUID,
			"type":       view.Type,
			"properties": errString(degraded.Properties),
			"psets":      errString(degraded.Psets),
			"quantities": errString(degraded.Quantities),
		})
	}

	s.logger.Debug("Element retrieved", map[string]interface{}{
		"modelId": input.ModelID,
		"guid":    input.GUID,
		"type":    view.Type,
	})
	return &view, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
