package domain

// User is the signed-in account. ID is zero when the service does not report one.
type User struct {
	ID       int
	FullName string
	Email    string
}

type RuleType string

const (
	RuleOn  RuleType = "on"
	RuleOff RuleType = "off"
)

// AutomationRule is a placeholder schedule entry. It is never executed.
type AutomationRule struct {
	Type RuleType `validate:"required,oneof=on off"`
	Time string   `validate:"required,datetime=15:04"`
}

// ToggleState is local-only UI state. It is not derived from or pushed to the
// device service.
type ToggleState struct {
	IsOn            bool
	AutomationRules []AutomationRule
}

// LightLevels holds the two light sliders, each in [0,1].
type LightLevels struct {
	MainLight float64
	FloorLamp float64
}

// SetupDraft is what the onboarding screens hand to each other through local
// persistence.
type SetupDraft struct {
	HomeID             string
	HomeName           string
	SelectedRoom       string
	SelectedDeviceType string
}
