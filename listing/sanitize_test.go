package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "Acme Co", "Acme Co"},
		{"trims", "  Acme Co \n", "Acme Co"},
		{"collapses whitespace", "Blue\tWater\r\n  Divers", "Blue Water Divers"},
		{"strips tags", "<b>Bold</b> <i>move</i>", "Bold move"},
		{"drops script body", "Hi<script>alert(1)</script> there", "Hi there"},
		{"decodes entities", "Fish &amp; Chips", "Fish & Chips"},
		{"keeps lone less-than", "a < b", "a < b"},
		{"invalid utf8 dropped", "ok\xffay", "okay"},
		{"sentinel untouched", "Not found", "Not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.in))
		})
	}
}

func TestSanitizeTextarea_KeepsNewlines(t *testing.T) {
	got := SanitizeTextarea("  Line one\nLine <em>two</em>\n\n<style>p{}</style>Line three  ")
	assert.Equal(t, "Line one\nLine two\n\nLine three", got)
}
