package render

import (
	"errors"
	"unicode/utf8"

	"channelpost-bot/internal/buttons"
)

const (
	// CaptionLimit is the platform limit for a photo caption, in characters.
	CaptionLimit = 1024
	// TextLimit is the platform limit for a plain text message, in characters.
	TextLimit = 4096

	ellipsis = "…"
)

// ErrNeedsChoice is returned when a photo post's text exceeds the caption limit
// and no explicit split/drop decision was supplied.
var ErrNeedsChoice = errors.New("text exceeds caption limit: choose split or drop photo")

// Layout is the message topology a post is rendered with.
type Layout int

const (
	// LayoutText is a single text message with buttons.
	LayoutText Layout = iota
	// LayoutPhoto is a single photo message with the full caption and buttons.
	LayoutPhoto
	// LayoutSplit is a photo with a shortened caption followed by a text message with buttons.
	LayoutSplit
)

func (l Layout) String() string {
	switch l {
	case LayoutText:
		return "text"
	case LayoutPhoto:
		return "photo"
	case LayoutSplit:
		return "split"
	default:
		return "unknown"
	}
}

// Resolution is one of the two ways out of an over-long photo caption.
type Resolution int

const (
	ResolutionSplit Resolution = iota + 1
	ResolutionDropPhoto
)

// Decision is the outcome of Decide. When NeedsChoice is set, Options lists
// exactly the resolutions the caller must ask the operator to pick from.
type Decision struct {
	Layout      Layout
	NeedsChoice bool
	Options     []Resolution
}

// Content is what an operator authored for a post.
type Content struct {
	Text     string
	Buttons  []buttons.Button
	PhotoRef string
}

// HasPhoto reports whether a photo is attached.
func (c Content) HasPhoto() bool {
	return c.PhotoRef != ""
}

// MessageKind distinguishes text messages from photo messages.
type MessageKind int

const (
	KindText MessageKind = iota
	KindPhoto
)

// Message is one outgoing message of a rendered post. For photos Text is the caption.
type Message struct {
	Kind     MessageKind
	Text     string
	Buttons  []buttons.Button
	PhotoRef string
}

// Plan is the full set of messages a post is rendered to.
type Plan struct {
	Layout    Layout
	Primary   Message
	Secondary *Message
}

// TooLongForCaption reports whether text cannot be used as a photo caption.
func TooLongForCaption(text string, limit int) bool {
	return utf8.RuneCountInString(text) > limit
}

// Decide picks the layout for text with or without a photo. It never truncates:
// a photo with over-limit text yields NeedsChoice.
func Decide(text string, hasPhoto bool, limit int) Decision {
	if !hasPhoto {
		return Decision{Layout: LayoutText}
	}
	if !TooLongForCaption(text, limit) {
		return Decision{Layout: LayoutPhoto}
	}
	return Decision{
		Layout:      LayoutSplit,
		NeedsChoice: true,
		Options:     []Resolution{ResolutionSplit, ResolutionDropPhoto},
	}
}

// Resolve returns the layout for content once the operator's split choice is known.
// Split without a photo degrades to a text message.
func Resolve(c Content, split bool, limit int) (Layout, error) {
	if !c.HasPhoto() {
		return LayoutText, nil
	}
	if split {
		return LayoutSplit, nil
	}
	if TooLongForCaption(c.Text, limit) {
		return LayoutText, ErrNeedsChoice
	}
	return LayoutPhoto, nil
}

// Build turns content into the messages to send.
func Build(c Content, split bool, limit int) (Plan, error) {
	layout, err := Resolve(c, split, limit)
	if err != nil {
		return Plan{}, err
	}
	switch layout {
	case LayoutPhoto:
		return Plan{
			Layout:  LayoutPhoto,
			Primary: Message{Kind: KindPhoto, Text: c.Text, Buttons: c.Buttons, PhotoRef: c.PhotoRef},
		}, nil
	case LayoutSplit:
		return Plan{
			Layout:    LayoutSplit,
			Primary:   Message{Kind: KindPhoto, Text: ShortCaption(c.Text, limit), PhotoRef: c.PhotoRef},
			Secondary: &Message{Kind: KindText, Text: c.Text, Buttons: c.Buttons},
		}, nil
	default:
		return Plan{
			Layout:  LayoutText,
			Primary: Message{Kind: KindText, Text: c.Text, Buttons: c.Buttons},
		}, nil
	}
}

// ShortCaption cuts text to limit-1 characters plus an ellipsis when it does not fit.
func ShortCaption(text string, limit int) string {
	if !TooLongForCaption(text, limit) {
		return text
	}
	return string([]rune(text)[:limit-1]) + ellipsis
}
