package drafts

import (
	"strings"
	"time"

	"channelpost-bot/internal/buttons"
	"channelpost-bot/internal/render"
	"channelpost-bot/internal/schedule"
)

// Prompt tells the caller what to show the operator after a step.
type Prompt int

const (
	PromptNone Prompt = iota
	PromptText
	PromptTextRequired
	PromptButtons
	PromptPhoto
	PromptPhotoRequired
	PromptLongCaptionChoice
	PromptPreview
	PromptScheduleChoice
	PromptManualDateTime
	PromptBadDateTime
	PromptTooSoon
	PromptCancelled
)

// CommitKind is the side effect a finished flow asks for.
type CommitKind int

const (
	CommitPublishNow CommitKind = iota + 1
	CommitSchedule
	CommitApplyPostEdit
	CommitApplyJobEdit
	CommitMoveJob
)

// Commit describes the terminal side effect. The caller performs it and clears
// the session only when it succeeds.
type Commit struct {
	Kind     CommitKind
	Draft    Draft
	TargetID string
	RunAt    time.Time
}

// Result is the outcome of a single step.
type Result struct {
	Prompt Prompt
	Commit *Commit
	// Done means the session ended without a commit and must be discarded.
	Done bool
}

// Composer drives sessions through their states. It performs no I/O.
type Composer struct {
	Location     *time.Location
	CaptionLimit int
	Now          func() time.Time
}

// NewComposer creates a Composer for the given timezone and caption limit.
func NewComposer(loc *time.Location, captionLimit int) *Composer {
	return &Composer{Location: loc, CaptionLimit: captionLimit, Now: time.Now}
}

// Step applies one input to s and returns the next session value and what to do.
// Invalid input re-prompts and leaves the session unchanged.
func (c *Composer) Step(s Session, in Input) (Session, Result) {
	if in.Kind == InputAction && in.Action == ActionCancel {
		return Session{}, Result{Prompt: PromptCancelled, Done: true}
	}

	switch st := s.Stage.(type) {
	case AwaitingText:
		return c.onText(s, in)
	case AwaitingButtons:
		return c.onButtons(s, st, in)
	case AwaitingPhoto:
		return c.onPhoto(s, st, in)
	case AwaitingLongCaptionChoice:
		return c.onLongCaptionChoice(s, st, in)
	case Preview:
		return c.onPreview(s, st, in)
	case AwaitingScheduleChoice:
		return c.onScheduleChoice(s, st.Draft, in)
	case AwaitingManualDateTime:
		return c.onManualDateTime(s, st.Draft, in)
	default:
		return Session{}, Result{Prompt: PromptCancelled, Done: true}
	}
}

func (c *Composer) onText(s Session, in Input) (Session, Result) {
	text := strings.TrimSpace(in.Text)
	if in.Kind != InputText || text == "" {
		return s, Result{Prompt: PromptTextRequired}
	}
	s.Stage = AwaitingButtons{Text: text}
	return s, Result{Prompt: PromptButtons}
}

func (c *Composer) onButtons(s Session, st AwaitingButtons, in Input) (Session, Result) {
	if in.Kind != InputText {
		return s, Result{Prompt: PromptButtons}
	}
	btns := []buttons.Button{}
	if DecodeIntent(in.Text) != IntentNone {
		btns = buttons.Parse(in.Text)
	}
	s.Stage = AwaitingPhoto{Text: st.Text, Buttons: btns}
	return s, Result{Prompt: PromptPhoto}
}

func (c *Composer) onPhoto(s Session, st AwaitingPhoto, in Input) (Session, Result) {
	var photoRef string
	switch in.Kind {
	case InputPhoto:
		if in.PhotoRef == "" {
			return s, Result{Prompt: PromptPhotoRequired}
		}
		photoRef = in.PhotoRef
	case InputText:
		switch DecodeIntent(in.Text) {
		case IntentNone:
		case IntentKeep:
			if !s.Flow.IsEdit() {
				return s, Result{Prompt: PromptPhotoRequired}
			}
			photoRef = s.Original.PhotoRef
		case IntentRemove:
			if !s.Flow.IsEdit() {
				return s, Result{Prompt: PromptPhotoRequired}
			}
		default:
			return s, Result{Prompt: PromptPhotoRequired}
		}
	default:
		return s, Result{Prompt: PromptPhotoRequired}
	}

	decision := render.Decide(st.Text, photoRef != "", c.CaptionLimit)
	if decision.NeedsChoice {
		s.Stage = AwaitingLongCaptionChoice{Text: st.Text, Buttons: st.Buttons, PhotoRef: photoRef}
		return s, Result{Prompt: PromptLongCaptionChoice}
	}
	s.Stage = Preview{Draft: Draft{Text: st.Text, Buttons: st.Buttons, PhotoRef: photoRef}}
	return s, Result{Prompt: PromptPreview}
}

func (c *Composer) onLongCaptionChoice(s Session, st AwaitingLongCaptionChoice, in Input) (Session, Result) {
	if in.Kind != InputAction {
		return s, Result{Prompt: PromptLongCaptionChoice}
	}
	d := st.draft()
	switch in.Action {
	case ActionSplit:
		d.SplitMode = true
	case ActionDropPhoto:
		d.PhotoRef = ""
	default:
		return s, Result{Prompt: PromptLongCaptionChoice}
	}
	s.Stage = Preview{Draft: d}
	return s, Result{Prompt: PromptPreview}
}

func (c *Composer) onPreview(s Session, st Preview, in Input) (Session, Result) {
	if in.Kind != InputAction {
		return s, Result{Prompt: PromptPreview}
	}
	switch {
	case s.Flow == FlowCreate && in.Action == ActionPublishNow:
		return s, Result{Commit: &Commit{Kind: CommitPublishNow, Draft: st.Draft}}
	case s.Flow == FlowCreate && in.Action == ActionSchedule:
		s.Stage = AwaitingScheduleChoice{Draft: st.Draft}
		return s, Result{Prompt: PromptScheduleChoice}
	case s.Flow == FlowEditPost && in.Action == ActionApply:
		return s, Result{Commit: &Commit{Kind: CommitApplyPostEdit, Draft: st.Draft, TargetID: s.TargetID}}
	case s.Flow == FlowEditJob && in.Action == ActionApply:
		return s, Result{Commit: &Commit{Kind: CommitApplyJobEdit, Draft: st.Draft, TargetID: s.TargetID}}
	default:
		return s, Result{Prompt: PromptPreview}
	}
}

func (c *Composer) onScheduleChoice(s Session, d Draft, in Input) (Session, Result) {
	if in.Kind != InputAction || in.Action != ActionPickTime {
		return s, Result{Prompt: PromptScheduleChoice}
	}
	return c.pick(s, d, in.PickCode)
}

func (c *Composer) onManualDateTime(s Session, d Draft, in Input) (Session, Result) {
	if in.Kind == InputAction && in.Action == ActionPickTime {
		return c.pick(s, d, in.PickCode)
	}
	if in.Kind != InputText {
		return s, Result{Prompt: PromptManualDateTime}
	}
	runAt, err := schedule.ParseManual(in.Text, c.Location)
	if err != nil {
		return s, Result{Prompt: PromptBadDateTime}
	}
	return c.scheduleAt(s, d, runAt)
}

func (c *Composer) pick(s Session, d Draft, code string) (Session, Result) {
	if code == schedule.ManualCode {
		s.Stage = AwaitingManualDateTime{Draft: d}
		return s, Result{Prompt: PromptManualDateTime}
	}
	runAt, err := schedule.Resolve(code, c.Now(), c.Location)
	if err != nil {
		return s, Result{Prompt: PromptScheduleChoice}
	}
	return c.scheduleAt(s, d, runAt)
}

func (c *Composer) scheduleAt(s Session, d Draft, runAt time.Time) (Session, Result) {
	if err := schedule.ValidateLead(runAt, c.Now()); err != nil {
		return s, Result{Prompt: PromptTooSoon}
	}
	d.ScheduleTime = runAt
	kind := CommitSchedule
	if s.Flow == FlowMoveJob {
		kind = CommitMoveJob
	}
	return s, Result{Commit: &Commit{Kind: kind, Draft: d, TargetID: s.TargetID, RunAt: runAt}}
}
