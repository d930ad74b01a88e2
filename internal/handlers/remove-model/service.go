package removemodel

import (
	"context"
	stderrors "errors"

	"ifc-api/internal/common/errors"
	"ifc-api/internal/common/logger"
	"ifc-api/internal/common/observability"
	"ifc-api/internal/store"
)

type Service struct {
	logger logger.Logger
	store  ModelRemover
	obs    *observability.Observability
}

func NewService(deps ServiceDependencies) *Service {
	return &Service{
		logger: deps.Logger,
		store:  deps.Store,
		obs:    deps.Observability,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := s.store.Remove(input.ModelID); err != nil {
		if stderrors.Is(err, store.ErrModelNotFound) {
			return nil, errors.NewModelNotFoundError(input.ModelID)
		}
		return nil, errors.NewModelRemoveFailedError(err)
	}

	s.obs.RecordModelRemoved(ctx, "request")
	s.logger.Info("Model removed", map[string]interface{}{
		"modelId": input.ModelID,
	})

	return &Output{Message: "Model removed successfully"}, nil
}
