package channel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"channelpost-bot/internal/buttons"
	"channelpost-bot/internal/render"

	"github.com/mymmrac/telego"
)

// Sender is the subset of Client needed to send a rendered post.
type Sender interface {
	SendText(ctx context.Context, channel, text string, btns []buttons.Button) (int, error)
	SendPhoto(ctx context.Context, channel, photoRef, caption string, btns []buttons.Button) (int, error)
	Delete(ctx context.Context, channel string, messageID int) error
}

// SendPlan sends the messages of plan in order and returns the primary message
// id and, for split posts, the text message id. If the second message fails the
// first one is removed so the channel is not left with half a post.
func SendPlan(ctx context.Context, s Sender, channel string, plan render.Plan) (primaryID, textID int, err error) {
	primaryID, err = sendMessage(ctx, s, channel, plan.Primary)
	if err != nil {
		return 0, 0, err
	}
	if plan.Secondary == nil {
		return primaryID, 0, nil
	}

	textID, err = sendMessage(ctx, s, channel, *plan.Secondary)
	if err != nil {
		if delErr := s.Delete(ctx, channel, primaryID); delErr != nil && !errors.Is(delErr, ErrMessageNotFound) {
			return 0, 0, fmt.Errorf("%w (orphaned message %d not removed: %v)", err, primaryID, delErr)
		}
		return 0, 0, err
	}
	return primaryID, textID, nil
}

// SendPlan sends plan through the client.
func (c *Client) SendPlan(ctx context.Context, channel string, plan render.Plan) (int, int, error) {
	return SendPlan(ctx, c, channel, plan)
}

func sendMessage(ctx context.Context, s Sender, channel string, m render.Message) (int, error) {
	if m.Kind == render.KindPhoto {
		return s.SendPhoto(ctx, channel, m.PhotoRef, m.Text, m.Buttons)
	}
	return s.SendText(ctx, channel, m.Text, m.Buttons)
}

// PhotoRef extracts a reusable file reference from an incoming message: the
// largest photo variant, or an image document.
func PhotoRef(msg *telego.Message) (string, bool) {
	if msg == nil {
		return "", false
	}
	if len(msg.Photo) > 0 {
		best := msg.Photo[0]
		for _, p := range msg.Photo[1:] {
			if larger(p, best) {
				best = p
			}
		}
		return best.FileID, best.FileID != ""
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, msg.Document.FileID != ""
	}
	return "", false
}

func larger(a, b telego.PhotoSize) bool {
	areaA, areaB := a.Width*a.Height, b.Width*b.Height
	if areaA != areaB {
		return areaA > areaB
	}
	return a.FileSize >= b.FileSize
}
