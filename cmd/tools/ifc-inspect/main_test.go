package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"ifc-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inspect(t *testing.T, args ...string) map[string]interface{} {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, runInspect(args, &out))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got), out.String())
	return got
}

// ==========================
// Summary
// ==========================

func TestRunInspect_Summary(t *testing.T) {
	path := testutil.WriteFile(t, "sample-house.ifc", testutil.SampleIFC)

	got := inspect(t, path)

	assert.Equal(t, path, got["file"])
	assert.Equal(t, "IFC4", got["schema"])
	assert.EqualValues(t, 36, got["entities"])
	assert.EqualValues(t, len(testutil.SampleIFC), got["bytes"])
	assert.EqualValues(t, testutil.SampleProductCount, got["total_elements"])
	assert.Equal(t, testutil.SampleProjectName, got["project_name"])

	header, ok := got["header"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "sample-house.ifc", header["name"])
	assert.Equal(t, "2024-05-02T10:15:00", header["timestamp"])
	assert.Equal(t, []interface{}{"Jane Doe"}, header["author"])
	assert.Equal(t, []interface{}{"Acme"}, header["organization"])
	assert.Equal(t, "ifc-api", header["originating_system"])
	assert.Equal(t, []interface{}{"IFC4"}, header["schema_identifiers"])
}

func TestRunInspect_SummaryCounts(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		elements int
		project  string
	}{
		{"mep plant room", testutil.MEPIFC, testutil.MEPProductCount, "Plant Room"},
		{"no project", testutil.NoProjectIFC, 1, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inspect(t, testutil.WriteFile(t, "model.ifc", tt.content))
			assert.EqualValues(t, tt.elements, got["total_elements"])
			assert.Equal(t, tt.project, got["project_name"])
		})
	}
}

// ==========================
// Element view
// ==========================

func TestRunInspect_Element(t *testing.T) {
	path := testutil.WriteFile(t, "sample-house.ifc", testutil.SampleIFC)

	got := inspect(t, "--guid", testutil.WallGUID, path)

	assert.Equal(t, testutil.WallGUID, got["guid"])
	assert.Equal(t, "IfcWall", got["type"])
	assert.Equal(t, "Basic Wall:Exterior", got["name"])
	psets, ok := got["psets"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, psets, "Pset_WallCommon")
}

func TestRunInspect_MEPElement(t *testing.T) {
	path := testutil.WriteFile(t, "plant-room.ifc", testutil.MEPIFC)

	got := inspect(t, "-g", testutil.UnitaryEquipmentGUID, path)

	assert.Equal(t, "IfcUnitaryEquipment", got["type"])
	props, ok := got["properties"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "AHU Type A", props["ObjectType"])
	assert.Equal(t, "TAG-7", props["Tag"])
}

// ==========================
// Failures
// ==========================

func TestRunInspect_Errors(t *testing.T) {
	sample := testutil.WriteFile(t, "sample-house.ifc", testutil.SampleIFC)
	garbage := testutil.WriteFile(t, "garbage.ifc", testutil.GarbageIFC)

	tests := []struct {
		name string
		args []string
	}{
		{"no file", nil},
		{"two files", []string{sample, sample}},
		{"missing file", []string{filepath.Join(t.TempDir(), "absent.ifc")}},
		{"not a step file", []string{garbage}},
		{"unknown guid", []string{"--guid", "0000000000000000000000", sample}},
		{"unknown flag", []string{"--nope", sample}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Error(t, runInspect(tt.args, &out))
			assert.Empty(t, out.String())
		})
	}
}
