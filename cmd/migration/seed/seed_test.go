package seed

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyFromRecord(t *testing.T) {
	record := []string{
		"123 Chestnut St", "Union", "NJ", "07083",
		"385000", "3", "1.5", "1450", "1952", "garage; finished basement",
	}

	property, err := propertyFromRecord(record)
	require.NoError(t, err)

	assert.Equal(t, "123 Chestnut St", property.Address)
	assert.Equal(t, "Union", property.City)
	assert.True(t, property.Price.Equal(decimal.NewFromInt(385000)))
	assert.Equal(t, 3, property.Bedrooms)
	assert.True(t, property.Bathrooms.Equal(decimal.NewFromFloat(1.5)))
	require.NotNil(t, property.SquareFeet)
	assert.Equal(t, 1450, *property.SquareFeet)
	require.NotNil(t, property.YearBuilt)
	assert.Equal(t, 1952, *property.YearBuilt)
	assert.Equal(t, []string{"garage", "finished basement"}, []string(property.Features))
}

func TestPropertyFromRecordOptionalColumns(t *testing.T) {
	record := []string{"9 Elm Ave", "Roselle Park", "NJ", "07204", "299900", "2", "1"}

	property, err := propertyFromRecord(record)
	require.NoError(t, err)

	assert.Nil(t, property.SquareFeet)
	assert.Nil(t, property.YearBuilt)
	assert.Empty(t, property.Features)
}

func TestPropertyFromRecordRejectsBadRows(t *testing.T) {
	tests := []struct {
		name   string
		record []string
	}{
		{"too few columns", []string{"9 Elm Ave", "Roselle Park", "NJ"}},
		{"bad price", []string{"9 Elm Ave", "Roselle Park", "NJ", "07204", "cheap", "2", "1"}},
		{"bad bedrooms", []string{"9 Elm Ave", "Roselle Park", "NJ", "07204", "299900", "two", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := propertyFromRecord(tt.record)
			assert.Error(t, err)
		})
	}
}
