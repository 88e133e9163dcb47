package alert

import (
	"fmt"
	"html/template"
	"strings"
)

// GraphContentID is the Content-ID the body references the graph by.
const GraphContentID = "graph"

var bodyTmpl = template.Must(template.New("body").Parse(
	`{{.DateTime}}<BR><BR>` +
		`<TABLE border='0'>` +
		`<TR bgcolor='{{.Color}}'><TD><B>Service State:</B></TD><TD><B>{{.ServiceState}}</B></TD></TR>` +
		`<TR><TD>Notification Type:</TD><TD>{{.NotificationType}}</TD></TR>` +
		`<TR><TD>Service:</TD><TD>{{.ServiceDescription}}</TD></TR>` +
		`<TR><TD>Host:</TD><TD>{{.HostAlias}}</TD></TR>` +
		`<TR><TD>Address:</TD><TD>{{.HostAddress}}</TD></TR>` +
		`<TR><TD>Runbook:</TD><TD><A HREF='{{.ActionURL}}'>{{.ActionURL}}</A></TD></TR>` +
		`<TR><TD>Problem Duration:</TD><TD>{{.ServiceDuration}}</TD></TR>` +
		`<TR><TD></TD><TD></TD></TR>` +
		`<TR><TD>Check Output:</TD><TD>{{.ServiceOutput}}</TD></TR>` +
		`</TABLE>` +
		`{{if .WithGraph}}<BR><BR><img src="cid:{{.ContentID}}">{{end}}`,
))

type bodyData struct {
	Context
	Color     string
	WithGraph bool
	ContentID string
}

// RenderBody renders the HTML body for ac. color tints the state row;
// withGraph appends the inline graph reference below the table.
func RenderBody(ac Context, color string, withGraph bool) (string, error) {
	var b strings.Builder
	err := bodyTmpl.Execute(&b, bodyData{
		Context:   ac,
		Color:     color,
		WithGraph: withGraph,
		ContentID: GraphContentID,
	})
	if err != nil {
		return "", fmt.Errorf("rendering body: %w", err)
	}
	return b.String(), nil
}
