package domain

import (
	"encoding/json"
	"fmt"
)

// InvocationSource identifies the phase in which the NLU engine calls the hook
type InvocationSource string

const (
	// InvocationDialogCodeHook is sent on every turn while slots are being collected
	InvocationDialogCodeHook InvocationSource = "DialogCodeHook"
	// InvocationFulfillmentCodeHook is sent once all slots are filled and confirmed
	InvocationFulfillmentCodeHook InvocationSource = "FulfillmentCodeHook"
)

// SessionAttributes is the opaque key-value bag the caller carries across turns
type SessionAttributes map[string]string

// OrEmpty never returns nil so the attributes always serialize as an object
func (a SessionAttributes) OrEmpty() SessionAttributes {
	if a == nil {
		return SessionAttributes{}
	}
	return a
}

type Bot struct {
	Name    string `json:"name"`
	Alias   string `json:"alias,omitempty"`
	Version string `json:"version,omitempty"`
}

type CurrentIntent struct {
	Name               string `json:"name"`
	Slots              Slots  `json:"slots"`
	ConfirmationStatus string `json:"confirmationStatus,omitempty"`
}

// IntentRequest is a single conversation turn forwarded by the NLU engine
type IntentRequest struct {
	InvocationSource  InvocationSource  `json:"invocationSource"`
	UserID            string            `json:"userId"`
	InputTranscript   string            `json:"inputTranscript,omitempty"`
	SessionAttributes SessionAttributes `json:"sessionAttributes"`
	Bot               Bot               `json:"bot"`
	CurrentIntent     CurrentIntent     `json:"currentIntent"`
}

const ContentTypePlainText = "PlainText"

type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

func PlainText(content string) Message {
	return Message{ContentType: ContentTypePlainText, Content: content}
}

// ValidationResult is either valid, or names the first violated slot along
// with the prompt shown to the user.
type ValidationResult struct {
	IsValid      bool
	ViolatedSlot SlotName
	Message      Message
}

func Valid() ValidationResult {
	return ValidationResult{IsValid: true}
}

func Invalid(slot SlotName, content string) ValidationResult {
	return ValidationResult{
		IsValid:      false,
		ViolatedSlot: slot,
		Message:      PlainText(content),
	}
}

type FulfillmentState string

const (
	FulfillmentFulfilled FulfillmentState = "Fulfilled"
)

type ActionType string

const (
	ActionElicitSlot ActionType = "ElicitSlot"
	ActionDelegate   ActionType = "Delegate"
	ActionClose      ActionType = "Close"
)

// DialogAction is the closed set of answers a dialog hook can give.
// ElicitSlot, Delegate and Close are the only implementations.
type DialogAction interface {
	Type() ActionType
	Session() SessionAttributes
	sealed()
}

type ElicitSlot struct {
	SessionAttributes SessionAttributes
	IntentName        string
	Slots             Slots
	SlotToElicit      SlotName
	Message           Message
}

type Delegate struct {
	SessionAttributes SessionAttributes
	Slots             Slots
}

type Close struct {
	SessionAttributes SessionAttributes
	FulfillmentState  FulfillmentState
	Message           Message
}

func (ElicitSlot) Type() ActionType { return ActionElicitSlot }
func (Delegate) Type() ActionType   { return ActionDelegate }
func (Close) Type() ActionType      { return ActionClose }

func (a ElicitSlot) Session() SessionAttributes { return a.SessionAttributes.OrEmpty() }
func (a Delegate) Session() SessionAttributes   { return a.SessionAttributes.OrEmpty() }
func (a Close) Session() SessionAttributes      { return a.SessionAttributes.OrEmpty() }

func (ElicitSlot) sealed() {}
func (Delegate) sealed()   {}
func (Close) sealed()      {}

// Response wraps a DialogAction in the envelope the NLU engine expects
type Response struct {
	Action DialogAction
}

type responseJSON struct {
	SessionAttributes SessionAttributes `json:"sessionAttributes"`
	DialogAction      interface{}       `json:"dialogAction"`
}

type elicitSlotJSON struct {
	Type         ActionType `json:"type"`
	IntentName   string     `json:"intentName"`
	Slots        Slots      `json:"slots"`
	SlotToElicit SlotName   `json:"slotToElicit"`
	Message      Message    `json:"message"`
}

type delegateJSON struct {
	Type  ActionType `json:"type"`
	Slots Slots      `json:"slots"`
}

type closeJSON struct {
	Type             ActionType       `json:"type"`
	FulfillmentState FulfillmentState `json:"fulfillmentState"`
	Message          Message          `json:"message"`
}

func (r Response) MarshalJSON() ([]byte, error) {
	var body interface{}
	switch a := r.Action.(type) {
	case ElicitSlot:
		body = elicitSlotJSON{
			Type:         a.Type(),
			IntentName:   a.IntentName,
			Slots:        orEmptySlots(a.Slots),
			SlotToElicit: a.SlotToElicit,
			Message:      a.Message,
		}
	case Delegate:
		body = delegateJSON{Type: a.Type(), Slots: orEmptySlots(a.Slots)}
	case Close:
		body = closeJSON{
			Type:             a.Type(),
			FulfillmentState: a.FulfillmentState,
			Message:          a.Message,
		}
	default:
		return nil, fmt.Errorf("domain: unknown dialog action %T", r.Action)
	}

	return json.Marshal(responseJSON{
		SessionAttributes: r.Action.Session(),
		DialogAction:      body,
	})
}

func orEmptySlots(s Slots) Slots {
	if s == nil {
		return Slots{}
	}
	return s
}
