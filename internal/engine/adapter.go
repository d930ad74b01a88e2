package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ifc-api/internal/common/logger"
	"ifc-api/internal/common/metrics"
	"ifc-api/internal/ifc"
)

// units maps the measure attribute of a simple quantity to its unit symbol.
// Quantities measured in anything else are dropped.
var units = map[string]string{
	"LengthValue": "m",
	"AreaValue":   "m²",
	"VolumeValue": "m³",
}

// IFCEngine implements Engine on top of the in-process STEP reader.
type IFCEngine struct {
	config *Config
	logger logger.Logger
	pool   *parsePool
}

var _ Engine = (*IFCEngine)(nil)

func New(cfg *Config, log logger.Logger) (*IFCEngine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	return &IFCEngine{
		config: cfg,
		logger: log,
		pool:   newParsePool(cfg.ParseWorkers),
	}, nil
}

// Open parses raw on the parse pool. It fails with ErrEngineBusy when no slot
// frees up within the parse timeout and with ErrEngineOpen when the content
// cannot be parsed in time or at all.
func (e *IFCEngine) Open(ctx context.Context, raw []byte) (*Model, error) {
	parseCtx, cancel := context.WithTimeout(ctx, e.config.ParseTimeout)
	defer cancel()

	start := time.Now()
	var file *ifc.Model
	err := e.pool.run(parseCtx, func() error {
		m, err := ifc.Open(raw)
		if err != nil {
			return err
		}
		file = m
		return nil
	})
	elapsed := time.Since(start)

	switch {
	case err == nil:
		metrics.ModelParseDuration.WithLabelValues("success").Observe(elapsed.Seconds())
		e.logger.Debug("Parsed IFC model", map[string]interface{}{
			"schema":             file.Schema,
			"instances":          file.Len(),
			"bytes":              len(raw),
			"file_name":          file.Header.Name,
			"originating_system": file.Header.OriginatingSystem,
			"timestamp":          file.Header.TimeStamp,
			"duration":           elapsed.String(),
		})
		return &Model{file: file, size: len(raw)}, nil

	case errors.Is(err, errNoSlot):
		metrics.ModelParseDuration.WithLabelValues("busy").Observe(elapsed.Seconds())
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w after %s", ErrEngineBusy, e.config.ParseTimeout)

	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		metrics.ModelParseDuration.WithLabelValues("timeout").Observe(elapsed.Seconds())
		return nil, fmt.Errorf("%w: parse exceeded %s", ErrEngineOpen, e.config.ParseTimeout)

	default:
		metrics.ModelParseDuration.WithLabelValues("failure").Observe(elapsed.Seconds())
		return nil, fmt.Errorf("%w: %w", ErrEngineOpen, err)
	}
}

func (e *IFCEngine) LookupByGUID(model *Model, guid string) (*Element, error) {
	if model == nil || model.file == nil {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, guid)
	}
	entity, ok := model.file.ByGUID(guid)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, guid)
	}
	return &Element{entity: entity, model: model.file}, nil
}

func (e *IFCEngine) ElementTypeName(el *Element) string {
	return el.entity.TypeName()
}

func (e *IFCEngine) Attribute(el *Element, name string) (*string, error) {
	return el.entity.AttrString(name)
}

// GetPropertySets returns the element's property and quantity sets, type
// sets first and overridden by occurrence sets.
func (e *IFCEngine) GetPropertySets(el *Element) (res Result[PropertySets]) {
	defer func() {
		if r := recover(); r != nil {
			res = e.degradedPsets(el, fmt.Errorf("property set traversal panicked: %v", r))
		}
	}()

	psets, err := el.model.PropertySets(el.entity)
	if err != nil {
		return e.degradedPsets(el, err)
	}
	return Result[PropertySets]{Value: psets}
}

// GetQuantities returns the element's length, area and volume quantities
// keyed by quantity name. Later quantity sets overwrite earlier ones.
func (e *IFCEngine) GetQuantities(el *Element) (res Result[Quantities]) {
	defer func() {
		if r := recover(); r != nil {
			res = e.degradedQuantities(el, fmt.Errorf("quantity traversal panicked: %v", r))
		}
	}()

	quantities, err := el.model.ElementQuantities(el.entity)
	if err != nil {
		return e.degradedQuantities(el, err)
	}

	out := make(Quantities, len(quantities))
	for _, q := range quantities {
		name, err := q.AttrString("Name")
		if err != nil {
			return e.degradedQuantities(el, err)
		}
		if name == nil {
			e.dropQuantity(el, q, "", "quantity has no name")
			continue
		}

		attr, v, err := ifc.QuantityValue(q)
		if err != nil {
			e.dropQuantity(el, q, *name, "not a simple quantity")
			continue
		}
		unit, ok := units[attr]
		if !ok {
			e.dropQuantity(el, q, *name, "no unit for "+attr)
			continue
		}
		value, ok := v.AsFloat()
		if !ok {
			e.dropQuantity(el, q, *name, "value is unset")
			continue
		}
		out[*name] = Quantity{Value: value, Unit: unit}
	}
	return Result[Quantities]{Value: out}
}

func (e *IFCEngine) ProjectName(model *Model) (*string, bool) {
	if model == nil || model.file == nil {
		return nil, false
	}
	projects := model.file.ByType("IfcProject")
	if len(projects) == 0 {
		return nil, false
	}
	name, err := projects[0].AttrString("Name")
	if err != nil {
		e.logger.Warn("Unreadable project name", map[string]interface{}{
			"entity": projects[0].ID,
			"error":  err.Error(),
		})
		return nil, true
	}
	return name, true
}

// ProductCount counts every IfcProduct instance, spatial structure included.
func (e *IFCEngine) ProductCount(model *Model) int {
	if model == nil || model.file == nil {
		return 0
	}
	return len(model.file.ByType("IfcProduct"))
}

func (e *IFCEngine) degradedPsets(el *Element, err error) Result[PropertySets] {
	metrics.PropertyDerivationDegraded.WithLabelValues("psets").Inc()
	e.logger.Warn("Property sets degraded to empty", map[string]interface{}{
		"guid":  el.GUID(),
		"error": err.Error(),
	})
	return Result[PropertySets]{Value: PropertySets{}, Err: err}
}

func (e *IFCEngine) degradedQuantities(el *Element, err error) Result[Quantities] {
	metrics.PropertyDerivationDegraded.WithLabelValues("quantities").Inc()
	e.logger.Warn("Quantities degraded to empty", map[string]interface{}{
		"guid":  el.GUID(),
		"error": err.Error(),
	})
	return Result[Quantities]{Value: Quantities{}, Err: err}
}

func (e *IFCEngine) dropQuantity(el *Element, q *ifc.Entity, name, reason string) {
	metrics.QuantitiesDropped.WithLabelValues(q.TypeName()).Inc()
	e.logger.Debug("Quantity omitted", map[string]interface{}{
		"guid":     el.GUID(),
		"quantity": name,
		"entity":   q.ID,
		"ifcType":  q.TypeName(),
		"reason":   reason,
	})
}
