package drafts

import "strings"

// Intent is a keyword reply decoded once, independent of the display language.
type Intent int

const (
	IntentOther Intent = iota
	// IntentNone means "no buttons" or "no photo".
	IntentNone
	// IntentKeep keeps the photo that was attached before an edit.
	IntentKeep
	// IntentRemove removes the photo during an edit.
	IntentRemove
)

var intentTokens = map[string]Intent{
	"none":     IntentNone,
	"no":       IntentNone,
	"нет":      IntentNone,
	"-":        IntentNone,
	"keep":     IntentKeep,
	"оставить": IntentKeep,
	"remove":   IntentRemove,
	"убрать":   IntentRemove,
}

// DecodeIntent maps free text to an Intent, case-insensitively.
func DecodeIntent(text string) Intent {
	if intent, ok := intentTokens[strings.ToLower(strings.TrimSpace(text))]; ok {
		return intent
	}
	return IntentOther
}

// InputKind distinguishes the shapes of operator input.
type InputKind int

const (
	InputText InputKind = iota
	InputPhoto
	InputAction
	// InputUnsupported is any other attachment (sticker, video, non-image document).
	InputUnsupported
)

// Action is a button press on an inline keyboard.
type Action int

const (
	ActionNone Action = iota
	ActionCancel
	ActionSplit
	ActionDropPhoto
	ActionPublishNow
	ActionSchedule
	ActionApply
	ActionPickTime
)

// Input is one operator event fed to the composer.
type Input struct {
	Kind     InputKind
	Text     string
	PhotoRef string
	Action   Action
	// PickCode carries the quick-pick code for ActionPickTime.
	PickCode string
}

// TextInput wraps a plain text message.
func TextInput(text string) Input {
	return Input{Kind: InputText, Text: text}
}

// PhotoInput wraps a resolved photo reference.
func PhotoInput(ref string) Input {
	return Input{Kind: InputPhoto, PhotoRef: ref}
}

// ActionInput wraps a button press.
func ActionInput(a Action) Input {
	return Input{Kind: InputAction, Action: a}
}

// PickInput wraps a quick-pick time choice.
func PickInput(code string) Input {
	return Input{Kind: InputAction, Action: ActionPickTime, PickCode: code}
}
