package removemodel

import (
	"context"

	"ifc-api/internal/common/logger"
	"ifc-api/internal/common/observability"
)

type Input struct {
	ModelID string `json:"model_id"`
}

type Output struct {
	Message string `json:"message"`
}

// ModelRemover is the store view this endpoint needs.
type ModelRemover interface {
	Remove(id string) error
}

type Executor interface {
	Execute(ctx context.Context, input *Input) (*Output, error)
}

type ServiceDependencies struct {
	Logger        logger.Logger
	Store         ModelRemover
	Observability *observability.Observability
}
