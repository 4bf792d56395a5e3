package channel

import (
	"context"
	"errors"
	"testing"
	"time"

	"channelpost-bot/internal/buttons"
	"channelpost-bot/internal/render"
	"channelpost-bot/pkg/telegoapi/telegoapitest"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestClient() (*Client, *telegoapitest.MockBot) {
	bot := new(telegoapitest.MockBot)
	return NewClient(bot, nil, time.Second), bot
}

func TestChatID(t *testing.T) {
	tests := []struct {
		raw     string
		want    telego.ChatID
		wantErr bool
	}{
		{raw: "-1001234567890", want: tu.ID(-1001234567890)},
		{raw: " 42 ", want: tu.ID(42)},
		{raw: "@mychannel", want: tu.Username("@mychannel")},
		{raw: "mychannel", want: tu.Username("@mychannel")},
		{raw: "", wantErr: true},
		{raw: "my channel", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ChatID(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidChatID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyboard(t *testing.T) {
	assert.Nil(t, Keyboard(nil))
	assert.Nil(t, Keyboard([]buttons.Button{}))

	kb := Keyboard([]buttons.Button{{Label: "A", URL: "https://a.example"}, {Label: "B", URL: "https://b.example"}})
	require.NotNil(t, kb)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "A", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "https://b.example", kb.InlineKeyboard[1][0].URL)
}

func TestSendText(t *testing.T) {
	client, bot := newTestClient()
	btns := []buttons.Button{{Label: "Go", URL: "https://go.dev"}}

	bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p *telego.SendMessageParams) bool {
		kb, ok := p.ReplyMarkup.(*telego.InlineKeyboardMarkup)
		return p.ChatID == tu.Username("@news") && p.Text == "Hello" && ok && len(kb.InlineKeyboard) == 1
	})).Return(&telego.Message{MessageID: 10}, nil).Once()

	id, err := client.SendText(context.Background(), "@news", "Hello", btns)
	require.NoError(t, err)
	assert.Equal(t, 10, id)
	bot.AssertExpectations(t)
}

func TestSendTextWithoutButtonsLeavesMarkupUnset(t *testing.T) {
	client, bot := newTestClient()
	bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p *telego.SendMessageParams) bool {
		return p.ReplyMarkup == nil
	})).Return(&telego.Message{MessageID: 11}, nil).Once()

	_, err := client.SendText(context.Background(), "-100", "Hello", nil)
	require.NoError(t, err)
	bot.AssertExpectations(t)
}

func TestSendPhotoError(t *testing.T) {
	client, bot := newTestClient()
	bot.On("SendPhoto", mock.Anything, mock.Anything).Return(nil, errors.New("telego: sendPhoto: api: 403 \"Forbidden: bot is not a member of the channel chat\"")).Once()

	_, err := client.SendPhoto(context.Background(), "-100", "file", "caption", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bot is not a member")
}

func TestEditTextNotModifiedIsSuccess(t *testing.T) {
	client, bot := newTestClient()
	bot.On("EditMessageText", mock.Anything, mock.MatchedBy(func(p *telego.EditMessageTextParams) bool {
		return p.MessageID == 5 && p.Text == "same" && p.ReplyMarkup == nil
	})).Return(nil, errors.New("telego: editMessageText: api: 400 \"Bad Request: message is not modified: specified new message content and reply markup are exactly the same\"")).Once()

	assert.NoError(t, client.EditText(context.Background(), "-100", 5, "same", nil))
	bot.AssertExpectations(t)
}

func TestEditCaptionMissingMessage(t *testing.T) {
	client, bot := newTestClient()
	bot.On("EditMessageCaption", mock.Anything, mock.Anything).Return(nil, errors.New("Bad Request: message to edit not found")).Once()

	err := client.EditCaption(context.Background(), "-100", 5, "c", nil)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestDelete(t *testing.T) {
	client, bot := newTestClient()
	bot.On("DeleteMessage", mock.Anything, &telego.DeleteMessageParams{ChatID: tu.ID(-100), MessageID: 1}).Return(nil).Once()
	bot.On("DeleteMessage", mock.Anything, &telego.DeleteMessageParams{ChatID: tu.ID(-100), MessageID: 2}).
		Return(errors.New("Bad Request: message to delete not found")).Once()
	bot.On("DeleteMessage", mock.Anything, &telego.DeleteMessageParams{ChatID: tu.ID(-100), MessageID: 3}).
		Return(errors.New("Forbidden: not enough rights")).Once()

	assert.NoError(t, client.Delete(context.Background(), "-100", 1))
	assert.ErrorIs(t, client.Delete(context.Background(), "-100", 2), ErrMessageNotFound)

	err := client.Delete(context.Background(), "-100", 3)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrMessageNotFound))
	bot.AssertExpectations(t)
}

func TestUserInfo(t *testing.T) {
	client, bot := newTestClient()
	bot.On("GetChat", mock.Anything, &telego.GetChatParams{ChatID: tu.ID(77)}).
		Return(&telego.ChatFullInfo{Username: "alice", FirstName: "Alice", LastName: "Liddell"}, nil).Once()

	username, name, err := client.UserInfo(context.Background(), 77)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.Equal(t, "Alice Liddell", name)
}

func TestSendPlanSplit(t *testing.T) {
	client, bot := newTestClient()
	bot.On("SendPhoto", mock.Anything, mock.MatchedBy(func(p *telego.SendPhotoParams) bool {
		return p.Photo.FileID == "file" && p.ReplyMarkup == nil
	})).Return(&telego.Message{MessageID: 20}, nil).Once()
	bot.On("SendMessage", mock.Anything, mock.Anything).Return(&telego.Message{MessageID: 21}, nil).Once()

	plan := render.Plan{
		Layout:    render.LayoutSplit,
		Primary:   render.Message{Kind: render.KindPhoto, Text: "short…", PhotoRef: "file"},
		Secondary: &render.Message{Kind: render.KindText, Text: "full", Buttons: []buttons.Button{{Label: "x", URL: "https://x.example"}}},
	}
	primary, text, err := client.SendPlan(context.Background(), "-100", plan)
	require.NoError(t, err)
	assert.Equal(t, 20, primary)
	assert.Equal(t, 21, text)
	bot.AssertExpectations(t)
}

func TestSendPlanRemovesOrphanedPhoto(t *testing.T) {
	client, bot := newTestClient()
	bot.On("SendPhoto", mock.Anything, mock.Anything).Return(&telego.Message{MessageID: 20}, nil).Once()
	bot.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("Too Many Requests: retry after 5")).Once()
	bot.On("DeleteMessage", mock.Anything, &telego.DeleteMessageParams{ChatID: tu.ID(-100), MessageID: 20}).Return(nil).Once()

	plan := render.Plan{
		Layout:    render.LayoutSplit,
		Primary:   render.Message{Kind: render.KindPhoto, Text: "short…", PhotoRef: "file"},
		Secondary: &render.Message{Kind: render.KindText, Text: "full"},
	}
	_, _, err := client.SendPlan(context.Background(), "-100", plan)
	assert.Error(t, err)
	bot.AssertExpectations(t)
}

func TestPhotoRef(t *testing.T) {
	ref, ok := PhotoRef(&telego.Message{Photo: []telego.PhotoSize{
		{FileID: "small", Width: 90, Height: 90},
		{FileID: "large", Width: 1280, Height: 1280},
		{FileID: "medium", Width: 320, Height: 320},
	}})
	assert.True(t, ok)
	assert.Equal(t, "large", ref)

	ref, ok = PhotoRef(&telego.Message{Document: &telego.Document{FileID: "doc", MimeType: "image/png"}})
	assert.True(t, ok)
	assert.Equal(t, "doc", ref)

	_, ok = PhotoRef(&telego.Message{Document: &telego.Document{FileID: "pdf", MimeType: "application/pdf"}})
	assert.False(t, ok)

	_, ok = PhotoRef(&telego.Message{Text: "нет"})
	assert.False(t, ok)
}
