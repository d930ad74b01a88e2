package getelementbyguid

import (
	"context"

	"ifc-api/internal/common/logger"
	"ifc-api/internal/engine"
	"ifc-api/internal/projector"
	"ifc-api/internal/store"
)

type Input struct {
	ModelID string `json:"model_id"`
	GUID    string `json:"guid"`
}

type Output = projector.ElementView

// ModelGetter is the store view this endpoint needs.
type ModelGetter interface {
	Get(id string) (*store.ModelEntry, error)
}

type Executor interface {
	Execute(ctx context.Context, input *Input) (*Output, error)
}

type ServiceDependencies struct {
	Logger logger.Logger
	Store  ModelGetter
	Engine engine.Engine
}
