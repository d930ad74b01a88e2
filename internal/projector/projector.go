// Package projector flattens an element into the JSON view returned by the
// element query endpoint.
package projector

import (
	"errors"

	"ifc-api/internal/engine"
)

// QuantitiesKey is the reserved pseudo property set holding inferred
// quantities.
const QuantitiesKey = "Quantities"

// propertyAttributes are the attributes copied into ElementView.Properties.
var propertyAttributes = []string{"ObjectType", "Tag", "Description"}

type ElementView struct {
	GUID       string                    `json:"guid"`
	Name       *string                   `json:"name"`
	Type       string                    `json:"type"`
	Properties map[string]any            `json:"properties"`
	Psets      map[string]map[string]any `json:"psets"`
}

// Degradation reports which derived blocks of a view were emptied after a
// traversal failure.
type Degradation struct {
	Properties error
	Psets      error
	Quantities error
}

func (d Degradation) Any() bool {
	return d.Properties != nil || d.Psets != nil || d.Quantities != nil
}

type Projector struct {
	engine engine.Engine
}

func New(e engine.Engine) *Projector {
	return &Projector{engine: e}
}

// Project builds the view of el. It never fails: unreadable blocks degrade
// to empty mappings and are reported in the returned Degradation.
func (p *Projector) Project(el *engine.Element) (ElementView, Degradation) {
	var deg Degradation
	view := ElementView{
		GUID: el.GUID(),
		Type: p.engine.ElementTypeName(el),
	}

	if name, err := p.engine.Attribute(el, "Name"); err == nil {
		view.Name = name
	}

	view.Properties, deg.Properties = p.properties(el)

	psets := p.engine.GetPropertySets(el)
	deg.Psets = psets.Err
	view.Psets = psets.Value
	if view.Psets == nil {
		view.Psets = map[string]map[string]any{}
	}

	quantities := p.engine.GetQuantities(el)
	deg.Quantities = quantities.Err
	if len(quantities.Value) > 0 {
		block := make(map[string]any, len(quantities.Value))
		for name, q := range quantities.Value {
			block[name] = q
		}
		view.Psets[QuantitiesKey] = block
	}

	return view, deg
}

// properties reads the fixed attribute block. An attribute the entity type
// does not declare is nil; any other failure empties the whole block.
func (p *Projector) properties(el *engine.Element) (map[string]any, error) {
	out := make(map[string]any, len(propertyAttributes))
	for _, attr := range propertyAttributes {
		v, err := p.engine.Attribute(el, attr)
		switch {
		case errors.Is(err, engine.ErrNoAttribute):
			out[attr] = nil
		case err != nil:
			return map[string]any{}, err
		case v == nil:
			out[attr] = nil
		default:
			out[attr] = *v
		}
	}
	return out, nil
}
