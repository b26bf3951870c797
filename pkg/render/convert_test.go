package render

import (
	"strings"
	"testing"
)

func TestConversionArgs(t *testing.T) {
	tests := []struct {
		name string
		c    Conversion
		want string
	}{
		{"pdf", Conversion{Format: "pdf"}, "--format pdf"},
		{"png 1x", Conversion{Format: "png", Scale: 1}, "--format png"},
		{"png 2x", Conversion{Format: "png", Scale: 2}, "--format png --zoom 2.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strings.Join(tt.c.args(), " "); got != tt.want {
				t.Errorf("args() = %q, want %q", got, tt.want)
			}
		})
	}
}
