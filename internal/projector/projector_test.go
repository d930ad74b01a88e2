package projector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"ifc-api/internal/common/logger"
	"ifc-api/internal/engine"
	"ifc-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Engine Implementation
// ==========================

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Open(ctx context.Context, raw []byte) (*engine.Model, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.Model), args.Error(1)
}

func (m *MockEngine) LookupByGUID(model *engine.Model, guid string) (*engine.Element, error) {
	args := m.Called(model, guid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.Element), args.Error(1)
}

func (m *MockEngine) ElementTypeName(el *engine.Element) string {
	return m.Called(el).String(0)
}

func (m *MockEngine) Attribute(el *engine.Element, name string) (*string, error) {
	args := m.Called(el, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

func (m *MockEngine) GetPropertySets(el *engine.Element) engine.Result[engine.PropertySets] {
	return m.Called(el).Get(0).(engine.Result[engine.PropertySets])
}

func (m *MockEngine) GetQuantities(el *engine.Element) engine.Result[engine.Quantities] {
	return m.Called(el).Get(0).(engine.Result[engine.Quantities])
}

func (m *MockEngine) ProjectName(model *engine.Model) (*string, bool) {
	args := m.Called(model)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*string), args.Bool(1)
}

func (m *MockEngine) ProductCount(model *engine.Model) int {
	return m.Called(model).Int(0)
}

// ==========================
// Test Helpers
// ==========================

func strPtr(s string) *string { return &s }

func sampleElement(t *testing.T, guid string) (*Projector, *engine.Element) {
	t.Helper()
	e, err := engine.New(nil, logger.NewTestLogger(t))
	require.NoError(t, err)
	m, err := e.Open(context.Background(), []byte(testutil.SampleIFC))
	require.NoError(t, err)
	el, err := e.LookupByGUID(m, guid)
	require.NoError(t, err)
	return New(e), el
}

// ==========================
// Projection Tests
// ==========================

func TestProject_Wall(t *testing.T) {
	p, el := sampleElement(t, testutil.WallGUID)

	view, deg := p.Project(el)
	assert.False(t, deg.Any())

	assert.Equal(t, testutil.WallGUID, view.GUID)
	require.NotNil(t, view.Name)
	assert.Equal(t, "Basic Wall:Exterior", *view.Name)
	assert.Equal(t, "IfcWall", view.Type)
	assert.Equal(t, map[string]any{
		"ObjectType":  "Basic Wall:Exterior 200",
		"Tag":         "W-101",
		"Description": nil,
	}, view.Properties)

	assert.Equal(t, "EI 60", view.Psets["Pset_WallCommon"]["FireRating"])
	assert.Equal(t, testutil.WallQtoID, view.Psets["Qto_WallBaseQuantities"]["id"])
	assert.Equal(t, map[string]any{
		"Length":      engine.Quantity{Value: 5, Unit: "m"},
		"NetSideArea": engine.Quantity{Value: 12.5, Unit: "m²"},
		"NetVolume":   engine.Quantity{Value: 1.725, Unit: "m³"},
	}, view.Psets[QuantitiesKey])
}

func TestProject_SlabJSON(t *testing.T) {
	p, el := sampleElement(t, testutil.SlabGUID)

	view, deg := p.Project(el)
	assert.False(t, deg.Any())

	body, err := json.Marshal(view)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"guid": "3cUkl32yn9qRSPvBJVyWYp",
		"name": null,
		"type": "IfcSlab",
		"properties": {"ObjectType": null, "Tag": "S-01", "Description": "Floor slab"},
		"psets": {}
	}`, string(body))
}

func TestProject_QuantityJSON(t *testing.T) {
	p, el := sampleElement(t, testutil.BeamGUID)

	view, _ := p.Project(el)
	body, err := json.Marshal(view.Psets[QuantitiesKey])
	require.NoError(t, err)
	assert.JSONEq(t, `{"Length": {"value": 6, "unit": "m"}}`, string(body))
}

func TestProject_UndeclaredAttributesAreNull(t *testing.T) {
	p, el := sampleElement(t, testutil.ProjectGUID)

	view, deg := p.Project(el)
	assert.Nil(t, deg.Properties)
	assert.Equal(t, "IfcProject", view.Type)
	assert.Equal(t, map[string]any{"ObjectType": nil, "Tag": nil, "Description": nil}, view.Properties)
	assert.NotContains(t, view.Psets, QuantitiesKey)
}

func TestProject_Degradation(t *testing.T) {
	boom := errors.New("boom")
	el := &engine.Element{}

	tests := []struct {
		name      string
		setup     func(m *MockEngine)
		wantProps map[string]any
		wantPsets map[string]map[string]any
		check     func(t *testing.T, deg Degradation)
	}{
		{
			name: "attribute failure empties properties",
			setup: func(m *MockEngine) {
				m.On("Attribute", el, "Name").Return(strPtr("Door"), nil)
				m.On("Attribute", el, "ObjectType").Return(strPtr("Single"), nil)
				m.On("Attribute", el, "Tag").Return(nil, boom)
				m.On("GetPropertySets", el).Return(engine.Result[engine.PropertySets]{Value: engine.PropertySets{"Pset_DoorCommon": {"id": 9}}})
				m.On("GetQuantities", el).Return(engine.Result[engine.Quantities]{Value: engine.Quantities{}})
			},
			wantProps: map[string]any{},
			wantPsets: map[string]map[string]any{"Pset_DoorCommon": {"id": 9}},
			check: func(t *testing.T, deg Degradation) {
				assert.ErrorIs(t, deg.Properties, boom)
				assert.Nil(t, deg.Psets)
			},
		},
		{
			name: "pset failure keeps quantities",
			setup: func(m *MockEngine) {
				m.On("Attribute", el, mock.Anything).Return(nil, nil)
				m.On("GetPropertySets", el).Return(engine.Result[engine.PropertySets]{Value: engine.PropertySets{}, Err: boom})
				m.On("GetQuantities", el).Return(engine.Result[engine.Quantities]{Value: engine.Quantities{"Width": {Value: 0.9, Unit: "m"}}})
			},
			wantProps: map[string]any{"ObjectType": nil, "Tag": nil, "Description": nil},
			wantPsets: map[string]map[string]any{
				QuantitiesKey: {"Width": engine.Quantity{Value: 0.9, Unit: "m"}},
			},
			check: func(t *testing.T, deg Degradation) {
				assert.ErrorIs(t, deg.Psets, boom)
				assert.Nil(t, deg.Quantities)
				assert.True(t, deg.Any())
			},
		},
		{
			name: "quantity failure omits the reserved key",
			setup: func(m *MockEngine) {
				m.On("Attribute", el, mock.Anything).Return(nil, fmt.Errorf("%w: IfcDoor.X", engine.ErrNoAttribute))
				m.On("GetPropertySets", el).Return(engine.Result[engine.PropertySets]{})
				m.On("GetQuantities", el).Return(engine.Result[engine.Quantities]{Value: engine.Quantities{}, Err: boom})
			},
			wantProps: map[string]any{"ObjectType": nil, "Tag": nil, "Description": nil},
			wantPsets: map[string]map[string]any{},
			check: func(t *testing.T, deg Degradation) {
				assert.ErrorIs(t, deg.Quantities, boom)
				assert.Nil(t, deg.Properties)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockEngine)
			m.On("ElementTypeName", el).Return("IfcDoor")
			tt.setup(m)

			view, deg := New(m).Project(el)
			assert.Equal(t, "IfcDoor", view.Type)
			assert.Equal(t, tt.wantProps, view.Properties)
			assert.Equal(t, tt.wantPsets, view.Psets)
			tt.check(t, deg)
			m.AssertExpectations(t)
		})
	}
}
