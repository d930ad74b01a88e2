package uploadifc

import (
	"context"

	"ifc-api/internal/common/logger"
	"ifc-api/internal/common/observability"
	"ifc-api/internal/engine"
)

const successMessage = "IFC file uploaded successfully"

// unknownProject is reported when the model has no IfcProject.
const unknownProject = "Unknown"

type Input struct {
	Filename string
	Content  []byte
}

type Output struct {
	ModelID       string  `json:"model_id"`
	Filename      string  `json:"filename"`
	ProjectName   *string `json:"project_name"`
	TotalElements int     `json:"total_elements"`
	Message       string  `json:"message"`
}

// ModelCreator is the store view this endpoint needs.
type ModelCreator interface {
	Create(model *engine.Model, filename, backingPath string) string
}

type Executor interface {
	Execute(ctx context.Context, input *Input) (*Output, error)
}

type ServiceDependencies struct {
	Logger        logger.Logger
	Store         ModelCreator
	Engine        engine.Engine
	Observability *observability.Observability
}
