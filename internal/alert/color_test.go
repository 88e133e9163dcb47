package alert_test

import (
	"testing"

	"github.com/hazz-dev/okgraph/internal/alert"
)

func TestHighlightColor(t *testing.T) {
	tests := []struct {
		notificationType string
		serviceState     string
		want             string
	}{
		{"ACKNOWLEDGEMENT", "CRITICAL", alert.ColorAcknowledged},
		{"ACKNOWLEDGEMENT", "GARBAGE", alert.ColorAcknowledged},
		{"CUSTOM", "WARNING", alert.ColorCustom},
		{"CUSTOM", "OK", alert.ColorCustom},
		{"PROBLEM", "CRITICAL", alert.ColorCritical},
		{"PROBLEM", "WARNING", alert.ColorWarning},
		{"RECOVERY", "OK", alert.ColorOK},
		{"PROBLEM", "UNKNOWN", alert.ColorUnknown},
		{"PROBLEM", "GARBAGE", alert.ColorFallback},
		{"", "", alert.ColorFallback},
		{"acknowledgement", "critical", alert.ColorFallback},
	}
	for _, tc := range tests {
		t.Run(tc.notificationType+"/"+tc.serviceState, func(t *testing.T) {
			if got := alert.HighlightColor(tc.notificationType, tc.serviceState); got != tc.want {
				t.Errorf("HighlightColor(%q, %q) = %q, want %q", tc.notificationType, tc.serviceState, got, tc.want)
			}
		})
	}
}

func TestHighlightColor_Distinct(t *testing.T) {
	colors := []string{
		alert.ColorAcknowledged,
		alert.ColorCustom,
		alert.ColorCritical,
		alert.ColorWarning,
		alert.ColorOK,
		alert.ColorUnknown,
		alert.ColorFallback,
	}
	seen := make(map[string]bool)
	for _, c := range colors {
		if seen[c] {
			t.Errorf("color %q used for more than one state", c)
		}
		seen[c] = true
	}
}
