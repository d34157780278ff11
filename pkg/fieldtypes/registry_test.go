package fieldtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketdesk/backend/pkg/constants"
)

func TestRegistry_CoversAllFieldTypes(t *testing.T) {
	registry := GetRegistry()

	for _, name := range constants.GetAllFieldTypes() {
		_, ok := registry.Get(name)
		assert.True(t, ok, "missing descriptor for field type %s", name)
	}
}

func TestRegistry_DescribeUnknownFallsBackToText(t *testing.T) {
	desc := Describe(constants.FieldType("signature"))

	textDesc := Describe(constants.FieldTypeText)
	assert.Equal(t, textDesc, desc)
	assert.Equal(t, "text", desc.InputKind)
}

func TestRegistry_DefaultConfig(t *testing.T) {
	selectCfg := DefaultConfig(constants.FieldTypeSelect)
	require.NotNil(t, selectCfg)
	assert.NotNil(t, selectCfg.Options)
	assert.Empty(t, selectCfg.Options)

	numberCfg := DefaultConfig(constants.FieldTypeNumber)
	require.NotNil(t, numberCfg)
	assert.True(t, numberCfg.IsEmpty())

	assert.Nil(t, DefaultConfig(constants.FieldTypeText))
	assert.Nil(t, DefaultConfig(constants.FieldType("signature")))
}

func TestGetAllFieldTypes_OrderedAndComplete(t *testing.T) {
	all := GetAllFieldTypes()
	require.Len(t, all, len(constants.GetAllFieldTypes()))

	assert.Equal(t, "text", all[0].Name)
	for _, d := range all {
		assert.NotEmpty(t, d.Label)
		assert.NotEmpty(t, d.InputKind)
		assert.NotEmpty(t, d.ConfigShape)
	}
}
