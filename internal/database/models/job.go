package models

import (
	"time"

	"channelpost-bot/internal/buttons"
	"channelpost-bot/internal/render"
)

// Job is a post scheduled for later publication. Content changes go through
// the edit path; RunAt only changes through a move.
type Job struct {
	ID        string           `bson:"_id"`
	ChannelID string           `bson:"channel_id"`
	Text      string           `bson:"text"`
	Buttons   []buttons.Button `bson:"buttons"`
	PhotoRef  string           `bson:"photo_ref,omitempty"`
	RunAt     time.Time        `bson:"run_at"`
	CreatedBy int64            `bson:"created_by"`
	CreatedAt time.Time        `bson:"created_at"`
}

// Content returns the renderable part of the job.
func (j Job) Content() render.Content {
	return render.Content{Text: j.Text, Buttons: j.Buttons, PhotoRef: j.PhotoRef}
}

// SplitMode is the layout the job was composed with: a photo whose text does
// not fit the caption is always published split.
func (j Job) SplitMode(captionLimit int) bool {
	return j.PhotoRef != "" && render.TooLongForCaption(j.Text, captionLimit)
}
