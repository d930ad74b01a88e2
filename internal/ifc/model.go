package ifc

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNoAttribute     = errors.New("entity type has no such attribute")
	ErrDanglingRef     = errors.New("reference to unknown instance")
	errAttrOutOfBounds = errors.New("attribute missing from instance")
)

// Model is a parsed, indexed IFC file. It is immutable once Open returns and
// safe for concurrent readers.
type Model struct {
	Schema string
	Header Header

	entities map[int]*Entity
	order    []int
	byGUID   map[string]*Entity
	byType   map[string][]*Entity
	// element id -> ids of the IfcRelDefines* relationships naming it
	definedBy map[int][]int
	// unknown type key -> schema entity it behaves as
	inferred map[string]string
}

// Entity is one instance from the DATA section.
type Entity struct {
	ID    int
	Type  string // upper-case STEP keyword
	Attrs []Value

	rooted bool
	model  *Model
}

func newModel(schema string, header Header, raw []rawInstance) (*Model, error) {
	m := &Model{
		Schema:    schema,
		Header:    header,
		entities:  make(map[int]*Entity, len(raw)),
		order:     make([]int, 0, len(raw)),
		byGUID:    make(map[string]*Entity),
		byType:    make(map[string][]*Entity),
		definedBy: make(map[int][]int),
		inferred:  make(map[string]string),
	}

	for _, r := range raw {
		if _, dup := m.entities[r.id]; dup {
			return nil, &SyntaxError{Line: r.line, Msg: fmt.Sprintf("%s #%d", ErrDuplicateInstance, r.id)}
		}
		e := &Entity{ID: r.id, Type: r.key, Attrs: r.attrs, model: m}
		switch {
		case lookupDef(r.key) != nil:
			e.rooted = isSubtype(r.key, "IfcRoot", nil)
		case len(r.attrs) > 0:
			s, ok := r.attrs[0].AsString()
			e.rooted = ok && isGUID(s)
		}
		m.entities[r.id] = e
		m.order = append(m.order, r.id)
		m.byType[r.key] = append(m.byType[r.key], e)
	}
	m.inferSupertypes()

	for _, id := range m.order {
		e := m.entities[id]
		if e.rooted && len(e.Attrs) > 0 {
			if guid, ok := e.Attrs[0].AsString(); ok {
				if _, seen := m.byGUID[guid]; !seen {
					m.byGUID[guid] = e
				}
			}
		}
		if e.IsA("IfcRelDefinesByProperties") || e.IsA("IfcRelDefinesByType") {
			related, err := e.Attr("RelatedObjects")
			if err != nil {
				continue
			}
			items, _ := related.AsList()
			for _, item := range items {
				if ref, ok := item.AsRef(); ok {
					m.definedBy[ref] = append(m.definedBy[ref], e.ID)
				}
			}
		}
	}
	return m, nil
}

// inference strength, weakest first
const (
	inferredObject = iota + 1
	inferredProduct
	inferredType
)

// inferSupertypes places rooted entities of types missing from the schema
// table under the closest known entity, judged from how the file uses them:
// the relating side of IfcRelDefinesByType is a type object, anything with a
// placement, a product shape or a spatial container is a product, and
// anything else that relationships assign to is an object. Instances with a
// Tag slot become IfcElement rather than IfcProduct.
func (m *Model) inferSupertypes() {
	rank := make(map[string]int)
	assign := func(e *Entity, super string, r int) {
		if e == nil || !e.rooted || lookupDef(e.Type) != nil || r <= rank[e.Type] {
			return
		}
		rank[e.Type] = r
		m.inferred[e.Type] = super
	}
	product := func(e *Entity) string {
		if len(e.Attrs) > 7 {
			return "IfcElement"
		}
		return "IfcProduct"
	}

	for _, id := range m.order {
		e := m.entities[id]
		if e.rooted && lookupDef(e.Type) == nil && m.placed(e) {
			assign(e, product(e), inferredProduct)
		}
		switch {
		case isSubtype(e.Type, "IfcRelDefinesByType", nil):
			if typ := m.refAt(e, 5); typ != nil {
				super := "IfcTypeObject"
				switch {
				case len(typ.Attrs) > 8:
					super = "IfcElementType"
				case len(typ.Attrs) > 7:
					super = "IfcTypeProduct"
				}
				assign(typ, super, inferredType)
			}
			for _, obj := range m.refsAt(e, 4) {
				assign(obj, "IfcObject", inferredObject)
			}
		case isSubtype(e.Type, "IfcRelDefinesByProperties", nil):
			for _, obj := range m.refsAt(e, 4) {
				assign(obj, "IfcObject", inferredObject)
			}
		case isSubtype(e.Type, "IfcRelContainedInSpatialStructure", nil):
			for _, el := range m.refsAt(e, 4) {
				assign(el, product(el), inferredProduct)
			}
		}
	}
}

// placed reports whether e carries an object placement or a product shape in
// the IfcProduct slots.
func (m *Model) placed(e *Entity) bool {
	if p := m.refAt(e, 5); p != nil && isSubtype(p.Type, "IfcObjectPlacement", nil) {
		return true
	}
	r := m.refAt(e, 6)
	return r != nil && isSubtype(r.Type, "IfcProductRepresentation", nil)
}

func (m *Model) refAt(e *Entity, idx int) *Entity {
	if idx >= len(e.Attrs) {
		return nil
	}
	ref, ok := e.Attrs[idx].AsRef()
	if !ok {
		return nil
	}
	return m.entities[ref]
}

func (m *Model) refsAt(e *Entity, idx int) []*Entity {
	if idx >= len(e.Attrs) {
		return nil
	}
	items, _ := e.Attrs[idx].AsList()
	out := make([]*Entity, 0, len(items))
	for _, item := range items {
		if ref, ok := item.AsRef(); ok {
			if target := m.entities[ref]; target != nil {
				out = append(out, target)
			}
		}
	}
	return out
}

// Len returns the number of instances.
func (m *Model) Len() int {
	return len(m.order)
}

// Entity returns the instance with the given id.
func (m *Model) Entity(id int) (*Entity, bool) {
	e, ok := m.entities[id]
	return e, ok
}

// ByGUID returns the rooted entity carrying the GlobalId.
func (m *Model) ByGUID(guid string) (*Entity, bool) {
	e, ok := m.byGUID[guid]
	return e, ok
}

// ByType returns every instance of typeName or one of its subtypes, ordered
// by instance id.
func (m *Model) ByType(typeName string) []*Entity {
	var out []*Entity
	for key, list := range m.byType {
		if isSubtype(key, typeName, m.inferred) {
			out = append(out, list...)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Resolve follows a reference value.
func (m *Model) Resolve(v Value) (*Entity, error) {
	ref, ok := v.AsRef()
	if !ok {
		return nil, fmt.Errorf("expected reference, found %s", v.Kind)
	}
	e, ok := m.entities[ref]
	if !ok {
		return nil, fmt.Errorf("%w #%d", ErrDanglingRef, ref)
	}
	return e, nil
}

// TypeName returns the schema spelling of the entity type, e.g. IfcWall.
func (e *Entity) TypeName() string {
	return CanonicalName(e.Type)
}

// IsA reports whether the entity is of typeName or one of its subtypes.
func (e *Entity) IsA(typeName string) bool {
	return isSubtype(e.Type, typeName, e.model.inferred)
}

// HasAttr reports whether the entity type declares the named attribute.
func (e *Entity) HasAttr(name string) bool {
	_, ok := e.attrIndex(name)
	return ok
}

func (e *Entity) attrIndex(name string) (int, bool) {
	if idx, ok := attrIndex(e.Type, name, e.model.inferred); ok {
		return idx, true
	}
	if e.rooted && lookupDef(e.Type) == nil {
		idx, ok := rootAttrs[name]
		return idx, ok
	}
	return 0, false
}

// Attr returns the named attribute. ErrNoAttribute means the entity type
// does not declare it, as opposed to declaring it and leaving it unset.
func (e *Entity) Attr(name string) (Value, error) {
	idx, ok := e.attrIndex(name)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s.%s", ErrNoAttribute, e.TypeName(), name)
	}
	if idx >= len(e.Attrs) {
		return Value{}, fmt.Errorf("%w: #%d %s.%s", errAttrOutOfBounds, e.ID, e.TypeName(), name)
	}
	return e.Attrs[idx], nil
}

// AttrString returns a string attribute, or nil when it is unset.
func (e *Entity) AttrString(name string) (*string, error) {
	v, err := e.Attr(name)
	if err != nil {
		return nil, err
	}
	if v.IsNull() {
		return nil, nil
	}
	s, ok := v.AsString()
	if !ok {
		return nil, fmt.Errorf("#%d %s.%s is %s, not a string", e.ID, e.TypeName(), name, v.Unwrap().Kind)
	}
	return &s, nil
}

// GlobalID returns the GlobalId of a rooted entity.
func (e *Entity) GlobalID() string {
	if !e.rooted || len(e.Attrs) == 0 {
		return ""
	}
	s, _ := e.Attrs[0].AsString()
	return s
}

// IsDefinedBy returns the IfcRelDefinesByProperties and IfcRelDefinesByType
// relationships naming the entity, in file order.
func (e *Entity) IsDefinedBy() []*Entity {
	ids := e.model.definedBy[e.ID]
	out := make([]*Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, e.model.entities[id])
	}
	return out
}

func (e *Entity) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d=%s(", e.ID, e.Type)
	for i, a := range e.Attrs {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
