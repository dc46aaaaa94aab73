// Package views renders the demo wizard as an HTML fragment for htmx hosts.
package views

import (
	_ "embed"
	"html/template"

	"github.com/a-h/templ"

	"github.com/aihealthrcm/demo-desk/pkg/models"
	"github.com/aihealthrcm/demo-desk/pkg/services"
	"github.com/aihealthrcm/demo-desk/pkg/wizard"
)

//go:embed wizard.html
var wizardHTML string

var wizardTemplate = template.Must(template.New("views").Parse(wizardHTML)).Lookup("wizard")

type progressStep struct {
	Number int
	Active bool
}

type wizardData struct {
	services.Snapshot
	Base          string
	Steps         []progressStep
	Roles         []string
	TeamSizes     []string
	TimeSlots     []string
	ScheduledDate string
	NextLabel     string
	Error         string
}

// Wizard renders the current step of a session. apiBase is the session's API
// URL that the fragment's htmx attributes post back to; errMsg is shown under
// the form when the last action was rejected.
func Wizard(snap services.Snapshot, catalog *models.Catalog, apiBase, errMsg string) templ.Component {
	data := wizardData{
		Snapshot:  snap,
		Base:      apiBase,
		Roles:     catalog.Roles,
		TeamSizes: catalog.TeamSizes,
		TimeSlots: catalog.TimeSlots,
		NextLabel: nextLabel(snap),
		Error:     errMsg,
	}
	if errMsg == "" && snap.LastError != "" {
		data.Error = "We couldn't submit your request. Please try again."
	}
	for i := 1; i <= snap.StepCount; i++ {
		data.Steps = append(data.Steps, progressStep{Number: i, Active: i <= snap.StepNumber})
	}
	if d := snap.Request.ScheduledDate; d != nil {
		data.ScheduledDate = d.Format(wizard.DateLayout)
	}
	return templ.FromGoHTML(wizardTemplate, data)
}

func nextLabel(snap services.Snapshot) string {
	switch {
	case snap.Step == wizard.StepContact.String():
		return "Next Step"
	case snap.Step == wizard.StepScheduling.String():
		return "Confirm Demo"
	case snap.DemoType == models.DemoLive:
		return "Schedule Time"
	}
	return "Submit Request"
}
