package wizard

import (
	"fmt"

	"github.com/aihealthrcm/demo-desk/pkg/models"
)

// Variant captures everything that differs between demo types, so the state
// machine never branches on the raw type string.
type Variant interface {
	Type() models.DemoType
	// Steps is the number of form steps the variant shows before submitting.
	Steps() int
	// FinalStep is the step whose forward action submits the request.
	FinalStep() Step
	variant()
}

// LiveDemo collects contact, qualification and a scheduled slot.
type LiveDemo struct{}

func (LiveDemo) Type() models.DemoType { return models.DemoLive }
func (LiveDemo) Steps() int            { return 3 }
func (LiveDemo) FinalStep() Step       { return StepScheduling }
func (LiveDemo) variant()              {}

// Assessment collects contact and qualification only.
type Assessment struct{}

func (Assessment) Type() models.DemoType { return models.DemoAssessment }
func (Assessment) Steps() int            { return 2 }
func (Assessment) FinalStep() Step       { return StepQualification }
func (Assessment) variant()              {}

// VideoDemo shows recorded content immediately. It has no form steps of its
// own; a host that still wants the prospect's details runs the two-step flow.
type VideoDemo struct {
	Content models.DemoInfo
}

func (VideoDemo) Type() models.DemoType { return models.DemoVideo }
func (VideoDemo) Steps() int            { return 0 }
func (VideoDemo) FinalStep() Step       { return StepQualification }
func (VideoDemo) variant()              {}

// VariantFor returns the variant for t, filling video content from the catalog.
func VariantFor(t models.DemoType, catalog *models.Catalog) (Variant, error) {
	switch t {
	case models.DemoLive:
		return LiveDemo{}, nil
	case models.DemoAssessment:
		return Assessment{}, nil
	case models.DemoVideo:
		return VideoDemo{Content: catalog.Demo(models.DemoVideo)}, nil
	}
	return nil, fmt.Errorf("%w: %q", models.ErrUnknownDemoType, t)
}
