package handlers

import (
	"context"
	"fmt"
	"time"

	"channelpost-bot/internal/auth"
	"channelpost-bot/internal/channel"
	"channelpost-bot/internal/database"
	"channelpost-bot/internal/drafts"
	"channelpost-bot/internal/mediagroups"
	telegoapi "channelpost-bot/pkg/telegoapi"

	"github.com/mymmrac/telego"
	"github.com/rs/zerolog"
)

const (
	jobListLimit  = 20
	postListLimit = 10
	previewRunes  = 60
)

// Command maps a bot command to its description key and handler.
type Command struct {
	Command     string
	Description string // message ID of the localized description
	OwnerOnly   bool
	Handler     func(context.Context, telegoapi.BotAPI, telego.Message) error
}

// Deps are the collaborators of a MessageHandler.
type Deps struct {
	ChannelID    string
	Location     *time.Location
	CaptionLimit int
	Version      string

	Admins    *auth.AdminChecker
	Sessions  *drafts.Store
	// Albums drops all but the first message of an album; nil uses a default tracker.
	Albums    *mediagroups.Tracker
	Publisher Publisher
	Mutator   Mutator
	Jobs      database.JobRepository
	Posts     database.PostRepository
	// Preview renders drafts into the operator's private chat.
	Preview channel.Sender
	// DBPing reports storage health for /myid; nil skips the check.
	DBPing func(ctx context.Context) error

	Logger zerolog.Logger
}

// MessageHandler routes operator messages and callbacks to the post engine.
type MessageHandler struct {
	channelID    string
	location     *time.Location
	captionLimit int
	version      string

	admins    *auth.AdminChecker
	sessions  *drafts.Store
	albums    *mediagroups.Tracker
	composer  *drafts.Composer
	publisher Publisher
	mutator   Mutator
	jobs      database.JobRepository
	posts     database.PostRepository
	preview   channel.Sender
	dbPing    func(ctx context.Context) error

	commands []Command
	now      func() time.Time
	logger   zerolog.Logger
}

// NewMessageHandler creates and initializes a new MessageHandler instance.
func NewMessageHandler(d Deps) (*MessageHandler, error) {
	switch {
	case d.Admins == nil:
		return nil, fmt.Errorf("admin checker cannot be nil")
	case d.Sessions == nil:
		return nil, fmt.Errorf("session store cannot be nil")
	case d.Publisher == nil || d.Mutator == nil:
		return nil, fmt.Errorf("publisher and mutator are required")
	case d.Jobs == nil || d.Posts == nil:
		return nil, fmt.Errorf("job and post repositories are required")
	case d.Preview == nil:
		return nil, fmt.Errorf("preview sender cannot be nil")
	case d.ChannelID == "":
		return nil, fmt.Errorf("channel ID cannot be empty")
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Albums == nil {
		d.Albums = mediagroups.NewTracker(mediagroups.DefaultTTL)
	}

	h := &MessageHandler{
		channelID:    d.ChannelID,
		location:     d.Location,
		captionLimit: d.CaptionLimit,
		version:      d.Version,
		admins:       d.Admins,
		sessions:     d.Sessions,
		albums:       d.Albums,
		composer:     drafts.NewComposer(d.Location, d.CaptionLimit),
		publisher:    d.Publisher,
		mutator:      d.Mutator,
		jobs:         d.Jobs,
		posts:        d.Posts,
		preview:      d.Preview,
		dbPing:       d.DBPing,
		now:          time.Now,
		logger:       d.Logger.With().Str("component", "handlers").Logger(),
	}
	h.composer.Now = func() time.Time { return h.now() }
	h.commands = []Command{
		{Command: "start", Description: "CmdStartDesc", Handler: h.HandleStart},
		{Command: "menu", Description: "CmdMenuDesc", Handler: h.HandleMenu},
		{Command: "help", Description: "CmdHelpDesc", Handler: h.HandleHelp},
		{Command: "myid", Description: "CmdMyIDDesc", Handler: h.HandleMyID},
		{Command: "cancel", Description: "CmdCancelDesc", Handler: h.HandleCancel},
		{Command: "newpost", Description: "CmdNewPostDesc", Handler: h.HandleNewPost},
		{Command: "jobs", Description: "CmdJobsDesc", Handler: h.HandleJobs},
		{Command: "posts", Description: "CmdPostsDesc", Handler: h.HandlePosts},
		{Command: "admins", Description: "CmdAdminsDesc", OwnerOnly: true, Handler: h.HandleAdmins},
		{Command: "addadmin", Description: "CmdAddAdminDesc", OwnerOnly: true, Handler: h.HandleAddAdmin},
		{Command: "deladmin", Description: "CmdDelAdminDesc", OwnerOnly: true, Handler: h.HandleDelAdmin},
	}
	return h, nil
}

// GetCommandHandler retrieves the handler for a command name, or nil.
func (h *MessageHandler) GetCommandHandler(command string) func(context.Context, telegoapi.BotAPI, telego.Message) error {
	for _, cmd := range h.commands {
		if cmd.Command == command {
			return cmd.Handler
		}
	}
	return nil
}

// publicCommands are answered for users outside the admin set.
var publicCommands = map[string]bool{"start": true, "myid": true}
