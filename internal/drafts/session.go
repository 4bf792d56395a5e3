package drafts

import (
	"time"

	"channelpost-bot/internal/buttons"
	"channelpost-bot/internal/render"
)

// Flow identifies what a session is authoring.
type Flow int

const (
	// FlowCreate composes a new post to publish now or schedule.
	FlowCreate Flow = iota
	// FlowEditPost edits a post that is already live in the channel.
	FlowEditPost
	// FlowEditJob edits the content of a scheduled job; its run time is untouched.
	FlowEditJob
	// FlowMoveJob only picks a new run time for a scheduled job.
	FlowMoveJob
)

func (f Flow) String() string {
	switch f {
	case FlowCreate:
		return "create"
	case FlowEditPost:
		return "edit_post"
	case FlowEditJob:
		return "edit_job"
	case FlowMoveJob:
		return "move_job"
	default:
		return "unknown"
	}
}

// IsEdit reports whether the flow edits existing content.
func (f Flow) IsEdit() bool {
	return f == FlowEditPost || f == FlowEditJob
}

// State names the step a session is waiting on. It is the tag of Stage.
type State int

const (
	StateNone State = iota
	StateAwaitingText
	StateAwaitingButtons
	StateAwaitingPhoto
	StateAwaitingLongCaptionChoice
	StatePreview
	StateAwaitingScheduleChoice
	StateAwaitingManualDateTime
)

func (s State) String() string {
	switch s {
	case StateAwaitingText:
		return "awaiting_text"
	case StateAwaitingButtons:
		return "awaiting_buttons"
	case StateAwaitingPhoto:
		return "awaiting_photo"
	case StateAwaitingLongCaptionChoice:
		return "awaiting_long_caption_choice"
	case StatePreview:
		return "preview"
	case StateAwaitingScheduleChoice:
		return "awaiting_schedule_choice"
	case StateAwaitingManualDateTime:
		return "awaiting_manual_datetime"
	default:
		return "none"
	}
}

// Draft is the post being assembled. It lives only inside a Session.
type Draft struct {
	Text         string
	Buttons      []buttons.Button
	PhotoRef     string
	SplitMode    bool
	ScheduleTime time.Time
}

// Content returns the renderable part of the draft.
func (d Draft) Content() render.Content {
	return render.Content{Text: d.Text, Buttons: d.Buttons, PhotoRef: d.PhotoRef}
}

// Stage is the step a session waits on together with what has been collected
// so far. Only the types in this file implement it.
type Stage interface {
	State() State
	draft() Draft
}

// AwaitingText waits for the post text. Nothing is collected yet.
type AwaitingText struct{}

// AwaitingButtons waits for the button lines.
type AwaitingButtons struct {
	Text string
}

// AwaitingPhoto waits for a photo or a photo keyword.
type AwaitingPhoto struct {
	Text    string
	Buttons []buttons.Button
}

// AwaitingLongCaptionChoice waits for split or drop-photo on a text too long
// for a caption.
type AwaitingLongCaptionChoice struct {
	Text     string
	Buttons  []buttons.Button
	PhotoRef string
}

// Preview holds a complete draft waiting for publish, schedule or apply.
type Preview struct {
	Draft Draft
}

// AwaitingScheduleChoice waits for a quick pick or manual entry. Draft is empty
// when a job is only being moved.
type AwaitingScheduleChoice struct {
	Draft Draft
}

// AwaitingManualDateTime waits for a typed date and time.
type AwaitingManualDateTime struct {
	Draft Draft
}

func (AwaitingText) State() State              { return StateAwaitingText }
func (AwaitingButtons) State() State           { return StateAwaitingButtons }
func (AwaitingPhoto) State() State             { return StateAwaitingPhoto }
func (AwaitingLongCaptionChoice) State() State { return StateAwaitingLongCaptionChoice }
func (Preview) State() State                   { return StatePreview }
func (AwaitingScheduleChoice) State() State    { return StateAwaitingScheduleChoice }
func (AwaitingManualDateTime) State() State    { return StateAwaitingManualDateTime }

func (AwaitingText) draft() Draft      { return Draft{} }
func (a AwaitingButtons) draft() Draft { return Draft{Text: a.Text} }
func (a AwaitingPhoto) draft() Draft   { return Draft{Text: a.Text, Buttons: a.Buttons} }
func (a AwaitingLongCaptionChoice) draft() Draft {
	return Draft{Text: a.Text, Buttons: a.Buttons, PhotoRef: a.PhotoRef}
}
func (p Preview) draft() Draft                { return p.Draft }
func (a AwaitingScheduleChoice) draft() Draft { return a.Draft }
func (a AwaitingManualDateTime) draft() Draft { return a.Draft }

// Session is one operator's in-progress flow.
type Session struct {
	Flow  Flow
	Stage Stage
	// TargetID is the post or job being edited or moved.
	TargetID string
	// Original is the content an edit started from; "keep" restores its photo.
	Original Draft
}

// State returns the tag of the current stage.
func (s Session) State() State {
	if s.Stage == nil {
		return StateNone
	}
	return s.Stage.State()
}

// Draft returns what the session has collected so far.
func (s Session) Draft() Draft {
	if s.Stage == nil {
		return Draft{}
	}
	return s.Stage.draft()
}

// NewCreate starts composing a new post.
func NewCreate() Session {
	return Session{Flow: FlowCreate, Stage: AwaitingText{}}
}

// NewEditPost starts editing a live post whose current content is current.
func NewEditPost(postID string, current Draft) Session {
	return Session{Flow: FlowEditPost, Stage: AwaitingText{}, TargetID: postID, Original: current}
}

// NewEditJob starts editing the content of a scheduled job.
func NewEditJob(jobID string, current Draft) Session {
	return Session{Flow: FlowEditJob, Stage: AwaitingText{}, TargetID: jobID, Original: current}
}

// NewMoveJob starts picking a new run time for a scheduled job.
func NewMoveJob(jobID string) Session {
	return Session{Flow: FlowMoveJob, Stage: AwaitingScheduleChoice{}, TargetID: jobID}
}
