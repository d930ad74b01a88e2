package listmodels

import (
	stderrors "errors"

	"ifc-api/internal/store"
)

var errStoreRequired = stderrors.New("store is required")

type Output struct {
	Models []store.Summary `json:"models"`
}
