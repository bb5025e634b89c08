package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forms-backend-go/internal/models"
)

func importFields() []models.FieldDef {
	return []models.FieldDef{
		{Name: "Item", Type: models.FieldText},
		{Name: "Amount", Type: models.FieldNumber},
		{Name: "Done", Type: models.FieldCheck},
		{Name: "Inspected", Type: models.FieldDate},
		{Name: "Area", Type: models.FieldHotspot, Hotspots: []models.Hotspot{{X: 1, Y: 1}, {X: 2, Y: 2}}},
	}
}

func TestBuildRecordDataCoercesPerFieldType(t *testing.T) {
	data := buildRecordData(importFields(), map[string]interface{}{
		"Item":     "pump housing",
		"Amount":   "1.234,56",
		"Done":     "sim",
		"Unmapped": "ignored",
	})

	require.Len(t, data, 3)
	assert.Equal(t, models.FieldValue{Value: "pump housing", Type: models.FieldText}, data["Item"])
	assert.Equal(t, models.FieldValue{Value: 1234.56, Type: models.FieldNumber}, data["Amount"])
	assert.Equal(t, models.FieldValue{Value: true, Type: models.FieldCheck}, data["Done"])
	_, ok := data["Unmapped"]
	assert.False(t, ok, "columns without a field definition are ignored")
}

func TestBuildRecordDataDropsUncoercibleCells(t *testing.T) {
	data := buildRecordData(importFields(), map[string]interface{}{
		"Amount":    "not a number",
		"Inspected": "not a date",
		"Done":      "no",
	})

	// Bad number and bad date cells are dropped, not zeroed; the boolean
	// column still lands because any unrecognized token means false.
	require.Len(t, data, 1)
	assert.Equal(t, models.FieldValue{Value: false, Type: models.FieldCheck}, data["Done"])
}

func TestBuildRecordDataEncodesHotspotObjects(t *testing.T) {
	data := buildRecordData(importFields(), map[string]interface{}{
		"Area": map[string]interface{}{"area": 2.0, "option": "Door"},
	})

	require.Len(t, data, 1)
	assert.Equal(t, models.FieldValue{Value: "hotspot2:Door", Type: models.FieldHotspot}, data["Area"])
}

func TestEncodeHotspotValue(t *testing.T) {
	// Already-encoded strings pass through untouched.
	got, ok := encodeHotspotValue("hotspot1:Window")
	require.True(t, ok)
	assert.Equal(t, "hotspot1:Window", got)

	// Objects without an area default to the first hotspot.
	got, ok = encodeHotspotValue(map[string]interface{}{"option": "Roof"})
	require.True(t, ok)
	assert.Equal(t, "hotspot1:Roof", got)

	_, ok = encodeHotspotValue("")
	assert.False(t, ok)
	_, ok = encodeHotspotValue(map[string]interface{}{"area": 3.0})
	assert.False(t, ok)
	_, ok = encodeHotspotValue(42)
	assert.False(t, ok)
}
