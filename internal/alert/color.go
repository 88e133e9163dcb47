package alert

// Highlight colors for the service state row.
const (
	ColorAcknowledged = "cyan"
	ColorCustom       = "greenyellow"
	ColorCritical     = "lightcoral"
	ColorWarning      = "yellow"
	ColorOK           = "springgreen"
	ColorUnknown      = "grey"
	// ColorFallback marks a state the policy does not know about.
	ColorFallback = "fuchsia"
)

type colorRule struct {
	notificationType string
	serviceState     string
	color            string
}

// colorRules is evaluated top to bottom and the first match wins, so an
// acknowledged CRITICAL renders as acknowledged. An empty field matches
// anything.
var colorRules = []colorRule{
	{notificationType: NotificationAcknowledgement, color: ColorAcknowledged},
	{notificationType: NotificationCustom, color: ColorCustom},
	{serviceState: "CRITICAL", color: ColorCritical},
	{serviceState: "WARNING", color: ColorWarning},
	{serviceState: "OK", color: ColorOK},
	{serviceState: "UNKNOWN", color: ColorUnknown},
}

func (r colorRule) matches(notificationType, serviceState string) bool {
	if r.notificationType != "" && r.notificationType != notificationType {
		return false
	}
	if r.serviceState != "" && r.serviceState != serviceState {
		return false
	}
	return true
}

// HighlightColor picks the state row color for an event.
func HighlightColor(notificationType, serviceState string) string {
	for _, r := range colorRules {
		if r.matches(notificationType, serviceState) {
			return r.color
		}
	}
	return ColorFallback
}
