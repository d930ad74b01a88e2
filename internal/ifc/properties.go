package ifc

import (
	"errors"
	"fmt"
)

// maxNesting bounds complex property and quantity recursion; cyclic
// references in malformed files would otherwise never terminate.
const maxNesting = 16

var errTooDeep = errors.New("property nesting too deep")

// PropertySets collects the property sets and quantity sets attached to e,
// keyed by set name. Sets inherited from the element type come first and are
// overridden property by property by the occurrence's own sets. Each set map
// carries the instance id of its defining entity under "id".
func (m *Model) PropertySets(e *Entity) (map[string]map[string]any, error) {
	out := make(map[string]map[string]any)

	typeObjects, err := m.typeObjects(e)
	if err != nil {
		return nil, err
	}
	for _, typ := range typeObjects {
		v, err := typ.Attr("HasPropertySets")
		if err != nil {
			return nil, err
		}
		refs, _ := v.AsList()
		for _, ref := range refs {
			def, err := m.Resolve(ref)
			if err != nil {
				return nil, err
			}
			if err := m.mergeDefinition(out, def); err != nil {
				return nil, err
			}
		}
	}

	defs, err := m.occurrenceDefinitions(e)
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		if err := m.mergeDefinition(out, def); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ElementQuantities returns the quantity entities of every IfcElementQuantity
// assigned to e, in file order.
func (m *Model) ElementQuantities(e *Entity) ([]*Entity, error) {
	defs, err := m.occurrenceDefinitions(e)
	if err != nil {
		return nil, err
	}
	var out []*Entity
	for _, def := range defs {
		if !def.IsA("IfcElementQuantity") {
			continue
		}
		v, err := def.Attr("Quantities")
		if err != nil {
			return nil, err
		}
		refs, _ := v.AsList()
		for _, ref := range refs {
			q, err := m.Resolve(ref)
			if err != nil {
				return nil, err
			}
			out = append(out, q)
		}
	}
	return out, nil
}

// typeObjects returns the type objects whose property sets e inherits. A
// type object inherits from itself.
func (m *Model) typeObjects(e *Entity) ([]*Entity, error) {
	if e.IsA("IfcTypeObject") {
		return []*Entity{e}, nil
	}
	var out []*Entity
	for _, rel := range e.IsDefinedBy() {
		if !rel.IsA("IfcRelDefinesByType") {
			continue
		}
		v, err := rel.Attr("RelatingType")
		if err != nil {
			return nil, err
		}
		typ, err := m.Resolve(v)
		if err != nil {
			return nil, err
		}
		if typ.IsA("IfcTypeObject") {
			out = append(out, typ)
		}
	}
	return out, nil
}

// occurrenceDefinitions returns the property definitions assigned to e
// through IfcRelDefinesByProperties. IFC4 allows a set of definitions per
// relationship; IFC2X3 allows exactly one.
func (m *Model) occurrenceDefinitions(e *Entity) ([]*Entity, error) {
	var out []*Entity
	for _, rel := range e.IsDefinedBy() {
		if !rel.IsA("IfcRelDefinesByProperties") {
			continue
		}
		v, err := rel.Attr("RelatingPropertyDefinition")
		if err != nil {
			return nil, err
		}
		refs := []Value{v}
		if items, ok := v.AsList(); ok {
			refs = items
		}
		for _, ref := range refs {
			def, err := m.Resolve(ref)
			if err != nil {
				return nil, err
			}
			out = append(out, def)
		}
	}
	return out, nil
}

func (m *Model) mergeDefinition(out map[string]map[string]any, def *Entity) error {
	var (
		members string
		isQto   bool
	)
	switch {
	case def.IsA("IfcPropertySet"):
		members = "HasProperties"
	case def.IsA("IfcElementQuantity"):
		members, isQto = "Quantities", true
	default:
		return nil
	}

	name, err := def.AttrString("Name")
	if err != nil {
		return err
	}
	if name == nil {
		return nil
	}
	v, err := def.Attr(members)
	if err != nil {
		return err
	}
	refs, _ := v.AsList()

	set, ok := out[*name]
	if !ok {
		set = make(map[string]any, len(refs)+1)
		out[*name] = set
	}
	for _, ref := range refs {
		member, err := m.Resolve(ref)
		if err != nil {
			return err
		}
		var (
			key string
			val any
		)
		if isQto {
			key, val, err = m.quantityEntry(member, 0)
		} else {
			key, val, err = m.propertyEntry(member, 0)
		}
		if err != nil {
			return err
		}
		if key != "" {
			set[key] = val
		}
	}
	set["id"] = def.ID
	return nil
}

func (m *Model) propertyEntry(prop *Entity, depth int) (string, any, error) {
	if depth > maxNesting {
		return "", nil, errTooDeep
	}
	if !prop.IsA("IfcProperty") {
		return "", nil, nil
	}
	name, err := prop.AttrString("Name")
	if err != nil || name == nil {
		return "", nil, err
	}

	switch {
	case prop.IsA("IfcPropertySingleValue"):
		v, err := prop.Attr("NominalValue")
		if err != nil {
			return "", nil, err
		}
		return *name, v.Native(), nil

	case prop.IsA("IfcPropertyEnumeratedValue"):
		return *name, m.listAttr(prop, "EnumerationValues"), nil

	case prop.IsA("IfcPropertyListValue"):
		return *name, m.listAttr(prop, "ListValues"), nil

	case prop.IsA("IfcPropertyBoundedValue"):
		bounds := make(map[string]any, 3)
		for _, attr := range []string{"UpperBoundValue", "LowerBoundValue", "SetPointValue"} {
			if v, err := prop.Attr(attr); err == nil && !v.IsNull() {
				bounds[attr] = v.Native()
			}
		}
		return *name, bounds, nil

	case prop.IsA("IfcPropertyTableValue"):
		return *name, map[string]any{
			"DefiningValues": m.listAttr(prop, "DefiningValues"),
			"DefinedValues":  m.listAttr(prop, "DefinedValues"),
		}, nil

	case prop.IsA("IfcPropertyReferenceValue"):
		v, err := prop.Attr("PropertyReference")
		if err != nil {
			return "", nil, err
		}
		return *name, v.Native(), nil

	case prop.IsA("IfcComplexProperty"):
		v, err := prop.Attr("HasProperties")
		if err != nil {
			return "", nil, err
		}
		nested, err := m.nestedEntries(v, depth, m.propertyEntry)
		if err != nil {
			return "", nil, err
		}
		nested["id"] = prop.ID
		return *name, nested, nil
	}
	return *name, nil, nil
}

func (m *Model) quantityEntry(q *Entity, depth int) (string, any, error) {
	if depth > maxNesting {
		return "", nil, errTooDeep
	}
	if !q.IsA("IfcPhysicalQuantity") {
		return "", nil, nil
	}
	name, err := q.AttrString("Name")
	if err != nil || name == nil {
		return "", nil, err
	}
	if q.IsA("IfcPhysicalComplexQuantity") {
		v, err := q.Attr("HasQuantities")
		if err != nil {
			return "", nil, err
		}
		nested, err := m.nestedEntries(v, depth, m.quantityEntry)
		if err != nil {
			return "", nil, err
		}
		nested["id"] = q.ID
		return *name, nested, nil
	}
	if len(q.Attrs) <= 3 {
		return *name, nil, nil
	}
	return *name, q.Attrs[3].Native(), nil
}

func (m *Model) nestedEntries(v Value, depth int, entry func(*Entity, int) (string, any, error)) (map[string]any, error) {
	refs, _ := v.AsList()
	out := make(map[string]any, len(refs)+1)
	for _, ref := range refs {
		child, err := m.Resolve(ref)
		if err != nil {
			return nil, err
		}
		key, val, err := entry(child, depth+1)
		if err != nil {
			return nil, err
		}
		if key != "" {
			out[key] = val
		}
	}
	return out, nil
}

func (m *Model) listAttr(e *Entity, attr string) []any {
	v, err := e.Attr(attr)
	if err != nil || v.IsNull() {
		return []any{}
	}
	items, ok := v.AsList()
	if !ok {
		return []any{v.Native()}
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item.Native()
	}
	return out
}

// QuantityValue returns the measure slot of a simple quantity together with
// the attribute name that declares it (LengthValue, AreaValue, ...).
func QuantityValue(q *Entity) (attr string, value Value, err error) {
	if !q.IsA("IfcPhysicalSimpleQuantity") {
		return "", Value{}, fmt.Errorf("%w: %s is not a simple quantity", ErrNoAttribute, q.TypeName())
	}
	for _, candidate := range []string{"LengthValue", "AreaValue", "VolumeValue", "CountValue", "WeightValue", "TimeValue", "NumberValue"} {
		if q.HasAttr(candidate) {
			v, err := q.Attr(candidate)
			return candidate, v, err
		}
	}
	return "", Value{}, fmt.Errorf("%w: %s declares no measure", ErrNoAttribute, q.TypeName())
}
