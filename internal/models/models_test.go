package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		want   string
		wantOK bool
	}{
		{name: "lower case", id: "65f0000000000000000000ab", want: "65f0000000000000000000ab", wantOK: true},
		{name: "upper case", id: "65F0000000000000000000AB", want: "65f0000000000000000000ab", wantOK: true},
		{name: "mixed case", id: "65f0000000000000000000aB", want: "65f0000000000000000000ab", wantOK: true},
		{name: "too short", id: "65f0", wantOK: false},
		{name: "not hex", id: "zzf0000000000000000000ab", wantOK: false},
		{name: "empty", id: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeID(tt.id)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, IsValidID(tt.id))
		})
	}
}
