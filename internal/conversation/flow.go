package conversation

import "regexp"

// ValidationType enumerates the supported step validation kinds
type ValidationType string

const (
	ValidationRequired ValidationType = "required"
	ValidationPattern  ValidationType = "pattern"
)

// ValidationRule gates advancement past a flow step
type ValidationRule struct {
	Type         ValidationType
	Pattern      *regexp.Regexp
	ErrorMessage string
}

// StepActionType enumerates side effects attached to a flow step
type StepActionType string

const (
	ActionSetVariable       StepActionType = "set_variable"
	ActionSendMessage       StepActionType = "send_message"
	ActionCreateAppointment StepActionType = "create_appointment"
)

// StepAction is a side effect the orchestrator executes when a step fires
type StepAction struct {
	Type    StepActionType
	Payload map[string]string
}

// FlowStep is an immutable step template inside a flow. The step ID doubles
// as the entity key its validation checks against.
type FlowStep struct {
	ID         string
	Name       string
	Type       string // input, confirmation, action
	Prompt     string
	Validation *ValidationRule
	Actions    []StepAction
}

// Flow is one conversation's instance of a step sequence. Steps are shared
// immutable templates; only the cursor and the variable bag mutate.
type Flow struct {
	Name      string
	Steps     []FlowStep
	Cursor    int
	Variables map[string]string
}

var (
	datePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
	timePattern = regexp.MustCompile(`^\d{1,2}:\d{2}\s*(AM|PM|am|pm)$`)
)

// bookingSteps is the default 5-step appointment booking flow. The final
// confirmation step is never auto-advanced past; its create_appointment
// action is what closes the flow, driven by the orchestrator.
var bookingSteps = []FlowStep{
	{
		ID:     "service_selection",
		Name:   "Service Selection",
		Type:   "input",
		Prompt: "What service would you like to book?",
		Validation: &ValidationRule{
			Type:         ValidationRequired,
			ErrorMessage: "Please select a service",
		},
		Actions: []StepAction{
			{Type: ActionSetVariable, Payload: map[string]string{"key": "selectedService", "source": "input"}},
		},
	},
	{
		ID:     "date_selection",
		Name:   "Date Selection",
		Type:   "input",
		Prompt: "What date would you like to book?",
		Validation: &ValidationRule{
			Type:         ValidationPattern,
			Pattern:      datePattern,
			ErrorMessage: "Please enter date in MM/DD/YYYY format",
		},
		Actions: []StepAction{
			{Type: ActionSetVariable, Payload: map[string]string{"key": "selectedDate", "source": "input"}},
		},
	},
	{
		ID:     "time_selection",
		Name:   "Time Selection",
		Type:   "input",
		Prompt: "What time would you prefer?",
		Validation: &ValidationRule{
			Type:         ValidationPattern,
			Pattern:      timePattern,
			ErrorMessage: "Please enter time in HH:MM AM/PM format",
		},
		Actions: []StepAction{
			{Type: ActionSetVariable, Payload: map[string]string{"key": "selectedTime", "source": "input"}},
		},
	},
	{
		ID:     "customer_info",
		Name:   "Customer Information",
		Type:   "input",
		Prompt: "Please provide your name and contact information",
		Validation: &ValidationRule{
			Type:         ValidationRequired,
			ErrorMessage: "Customer information is required",
		},
		Actions: []StepAction{
			{Type: ActionSetVariable, Payload: map[string]string{"key": "customerInfo", "source": "input"}},
		},
	},
	{
		ID:     "confirmation",
		Name:   "Confirmation",
		Type:   "confirmation",
		Prompt: "Please confirm your booking details",
		Actions: []StepAction{
			{Type: ActionCreateAppointment, Payload: map[string]string{"useVariables": "true"}},
		},
	},
}

// NewBookingFlow returns a fresh instance of the default booking flow
func NewBookingFlow() *Flow {
	return &Flow{
		Name:      "booking",
		Steps:     bookingSteps,
		Cursor:    0,
		Variables: make(map[string]string),
	}
}

// newEmptyFlow returns a flow with no steps, used when no template matches
func newEmptyFlow() *Flow {
	return &Flow{
		Name:      "default",
		Steps:     nil,
		Cursor:    0,
		Variables: make(map[string]string),
	}
}
