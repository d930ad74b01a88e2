// Package engine adapts the IFC reader to the operations the HTTP surface
// needs: opening uploads, resolving GlobalIds and deriving property sets and
// quantities with degrade-to-empty semantics.
package engine

import (
	"context"
	"errors"

	"ifc-api/internal/ifc"
)

var (
	ErrEngineOpen      = errors.New("engine could not open model")
	ErrEngineBusy      = errors.New("no parse slot available")
	ErrElementNotFound = errors.New("element not found")
	ErrNoAttribute     = ifc.ErrNoAttribute
)

// Engine is the contract between the service and the IFC reader.
type Engine interface {
	Open(ctx context.Context, raw []byte) (*Model, error)
	LookupByGUID(model *Model, guid string) (*Element, error)
	ElementTypeName(el *Element) string
	// Attribute reads a string attribute. It returns nil for an unset value
	// and an error wrapping ErrNoAttribute when the type does not declare it.
	Attribute(el *Element, name string) (*string, error)
	GetPropertySets(el *Element) Result[PropertySets]
	GetQuantities(el *Element) Result[Quantities]
	// ProjectName returns the first IfcProject's Name. found is false when
	// the model has no project.
	ProjectName(model *Model) (name *string, found bool)
	ProductCount(model *Model) int
}

// Model is an opened IFC file. It is immutable and safe for concurrent use.
type Model struct {
	file *ifc.Model
	size int
}

// Schema returns the schema family, e.g. IFC4.
func (m *Model) Schema() string {
	if m == nil || m.file == nil {
		return ""
	}
	return m.file.Schema
}

// Len is the number of instances in the DATA sections.
func (m *Model) Len() int {
	if m == nil || m.file == nil {
		return 0
	}
	return m.file.Len()
}

// Header returns the file's HEADER section.
func (m *Model) Header() ifc.Header {
	if m == nil || m.file == nil {
		return ifc.Header{}
	}
	return m.file.Header
}

// Size is the number of bytes the model was parsed from.
func (m *Model) Size() int {
	if m == nil {
		return 0
	}
	return m.size
}

// Element is a rooted entity of a Model.
type Element struct {
	entity *ifc.Entity
	model  *ifc.Model
}

// GUID returns the element's GlobalId.
func (el *Element) GUID() string {
	if el == nil || el.entity == nil {
		return ""
	}
	return el.entity.GlobalID()
}

type PropertySets = map[string]map[string]any

type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Quantities = map[string]Quantity

// Result carries a derived value that may have degraded. A degraded result
// holds an empty Value and the failure in Err, so callers can tell it apart
// from an element that simply has nothing to report.
type Result[T any] struct {
	Value T
	Err   error
}

func (r Result[T]) Degraded() bool {
	return r.Err != nil
}
