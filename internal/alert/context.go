package alert

import "strings"

// Icinga macro environment variables read by ContextFromEnv.
const (
	EnvNotificationType   = "ICINGA_NOTIFICATIONTYPE"
	EnvServiceState       = "ICINGA_SERVICESTATE"
	EnvHostAlias          = "ICINGA_HOSTALIAS"
	EnvHostAddress        = "ICINGA_HOSTADDRESS"
	EnvServiceDescription = "ICINGA_SERVICEDESC"
	EnvDateTime           = "ICINGA_LONGDATETIME"
	EnvActionURL          = "ICINGA_SERVICEACTIONURL"
	EnvServiceOutput      = "ICINGA_SERVICEOUTPUT"
	EnvServiceDuration    = "ICINGA_SERVICEDURATION"
	EnvContactEmail       = "ICINGA_CONTACTEMAIL"
	EnvGraphiteMetric     = "ICINGA__SERVICEGRAPHITE_METRIC"
	EnvWarnThreshold      = "ICINGA__SERVICEWARN"
	EnvCritThreshold      = "ICINGA__SERVICECRIT"
)

// Notification types with their own highlight color.
const (
	NotificationAcknowledgement = "ACKNOWLEDGEMENT"
	NotificationCustom          = "CUSTOM"
)

// Context is the snapshot of one notification event. It is captured once
// at startup and passed by value; nothing mutates it afterwards.
type Context struct {
	NotificationType   string
	ServiceState       string
	HostAlias          string
	HostAddress        string
	ServiceDescription string
	DateTime           string
	ActionURL          string
	ServiceOutput      string
	ServiceDuration    string
	ContactEmails      []string

	// Optional. Empty means not configured for the service.
	GraphiteMetric string
	WarnThreshold  string
	CritThreshold  string
}

// ContextFromEnv captures the notification context through lookup,
// typically os.LookupEnv.
func ContextFromEnv(lookup func(string) (string, bool)) Context {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	return Context{
		NotificationType:   get(EnvNotificationType),
		ServiceState:       get(EnvServiceState),
		HostAlias:          get(EnvHostAlias),
		HostAddress:        get(EnvHostAddress),
		ServiceDescription: get(EnvServiceDescription),
		DateTime:           get(EnvDateTime),
		ActionURL:          get(EnvActionURL),
		ServiceOutput:      get(EnvServiceOutput),
		ServiceDuration:    get(EnvServiceDuration),
		ContactEmails:      strings.Fields(get(EnvContactEmail)),
		GraphiteMetric:     strings.TrimSpace(get(EnvGraphiteMetric)),
		WarnThreshold:      strings.TrimSpace(get(EnvWarnThreshold)),
		CritThreshold:      strings.TrimSpace(get(EnvCritThreshold)),
	}
}

// Subject returns the mail subject for the event.
func (c Context) Subject() string {
	return c.NotificationType + " " + c.ServiceState + " " + c.HostAlias + "/" + c.ServiceDescription
}
