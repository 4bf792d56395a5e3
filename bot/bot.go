package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	telegoapi "channelpost-bot/pkg/telegoapi"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	"github.com/rs/zerolog"
	"go.uber.org/ratelimit"
)

const processTimeout = 30 * time.Second

// UpdateHandler processes operator messages and button presses.
type UpdateHandler interface {
	HandleMessage(ctx context.Context, bot telegoapi.BotAPI, message telego.Message) error
	HandleCallbackQuery(ctx context.Context, bot telegoapi.BotAPI, query telego.CallbackQuery) error
}

// Bot fans incoming updates out to the handler, one goroutine per update.
type Bot struct {
	bot         telegoapi.BotAPI
	updatesChan <-chan telego.Update
	handler     UpdateHandler
	ratelimiter ratelimit.Limiter
	logger      zerolog.Logger
}

// BotDeps holds the dependencies required to create a new Bot.
type BotDeps struct {
	Bot         telegoapi.BotAPI
	UpdatesChan <-chan telego.Update
	Handler     UpdateHandler
	// RatePerSecond caps update processing; zero means 20.
	RatePerSecond int
	Logger        zerolog.Logger
}

// New creates a new Bot instance.
func New(deps BotDeps) (*Bot, error) {
	if deps.Bot == nil {
		return nil, fmt.Errorf("telego bot (BotAPI) instance cannot be nil")
	}
	if deps.Handler == nil {
		return nil, fmt.Errorf("update handler cannot be nil")
	}
	if deps.UpdatesChan == nil {
		return nil, fmt.Errorf("updates channel cannot be nil")
	}
	rate := deps.RatePerSecond
	if rate <= 0 {
		rate = 20
	}
	return &Bot{
		bot:         deps.Bot,
		updatesChan: deps.UpdatesChan,
		handler:     deps.Handler,
		ratelimiter: ratelimit.New(rate),
		logger:      deps.Logger.With().Str("component", "bot").Logger(),
	}, nil
}

// processUpdate handles a single update with a timeout. Panics are recovered
// and reported so one bad update cannot take the bot down.
func (b *Bot) processUpdate(ctx context.Context, update telego.Update) {
	b.ratelimiter.Take()

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered panic while processing update")
			sentry.CurrentHub().Recover(r)
			sentry.Flush(2 * time.Second)
		}
	}()

	processingCtx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	var (
		err  error
		kind string
	)
	switch {
	case update.Message != nil:
		kind = "message"
		err = b.handler.HandleMessage(processingCtx, b.bot, *update.Message)
	case update.CallbackQuery != nil:
		kind = "callback"
		err = b.handler.HandleCallbackQuery(processingCtx, b.bot, *update.CallbackQuery)
	default:
		b.logger.Debug().Int("update_id", update.UpdateID).Msg("Ignoring unhandled update type")
		return
	}

	if err != nil {
		b.logger.Error().Err(err).Str("kind", kind).Int("update_id", update.UpdateID).Msg("Handler error")
		sentry.CaptureException(fmt.Errorf("%s update %d: %w", kind, update.UpdateID, err))
	}
}

// Start processes updates until ctx is done or the channel closes, then waits
// for in-flight updates to finish.
func (b *Bot) Start(ctx context.Context) {
	b.logger.Info().Msg("Listening for updates")
	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		b.logger.Info().Msg("All update processing finished")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				b.logger.Info().Msg("Updates channel closed")
				return
			}
			wg.Add(1)
			go func(up telego.Update) {
				defer wg.Done()
				b.processUpdate(ctx, up)
			}(update)
		}
	}
}
