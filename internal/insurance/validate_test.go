package insurance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidVehicleNumber(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"KA-01-AB-1234", true},
		{"KA-03-A-2882", true},
		{"MH-12-XY-0001", true},
		{"ka-01-ab-1234", false},
		{"KA-01-ABC-1234", false},
		{"KA-1-AB-1234", false},
		{"KA-01-AB-123", false},
		{"KA01AB1234", false},
		{"", false},
		{"KA-01-AB-1234 ", false},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidVehicleNumber(tt.number))
		})
	}
}

func TestIsValidVIN(t *testing.T) {
	assert.True(t, IsValidVIN("ABCDEFGHIJ"))
	assert.True(t, IsValidVIN("1234567890"))

	assert.False(t, IsValidVIN("ABCDEFGHI"))
	assert.False(t, IsValidVIN("ABCDEFGHIJK"))
	assert.False(t, IsValidVIN(""))
}
