package mutator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"channelpost-bot/internal/buttons"
	"channelpost-bot/internal/channel/channeltest"
	"channelpost-bot/internal/database"
	"channelpost-bot/internal/database/databasetest"
	"channelpost-bot/internal/database/models"
	"channelpost-bot/internal/publisher"
	"channelpost-bot/internal/render"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	fake  *channeltest.Fake
	store *databasetest.Store
	pub   *publisher.Publisher
	mut   *Mutator
}

func newEnv() *testEnv {
	fake := channeltest.New()
	store := databasetest.New()
	return &testEnv{
		fake:  fake,
		store: store,
		pub:   publisher.New(fake, store, render.CaptionLimit, zerolog.Nop()),
		mut:   New(fake, store, render.CaptionLimit, zerolog.Nop()),
	}
}

func (e *testEnv) publish(t *testing.T, content render.Content, split bool) string {
	t.Helper()
	id, err := e.pub.Publish(context.Background(), publisher.Request{
		ChannelID: "-100", Content: content, SplitMode: split, CreatedBy: 7,
	})
	require.NoError(t, err)
	return id
}

func (e *testEnv) post(t *testing.T, id string) *models.Post {
	t.Helper()
	post, err := e.store.GetPost(context.Background(), id)
	require.NoError(t, err)
	return post
}

// assertSplitConsistent checks that a text message id exists exactly for split posts.
func assertSplitConsistent(t *testing.T, post *models.Post) {
	t.Helper()
	wantSplit := post.PhotoRef != "" && render.TooLongForCaption(post.Text, render.CaptionLimit)
	assert.Equal(t, wantSplit, post.TextMessageID != 0, "post %s", post.ID)
}

// Adding a photo to a text post replaces the message but keeps the id.
func TestApplyEditAddPhotoReplaces(t *testing.T) {
	env := newEnv()
	id := env.publish(t, render.Content{Text: "Hello"}, false)
	before := env.post(t, id)

	err := env.mut.ApplyEdit(context.Background(), id, Edit{Content: render.Content{Text: "Hello", PhotoRef: "photo"}})
	require.NoError(t, err)

	after := env.post(t, id)
	assert.Equal(t, id, after.ID)
	assert.NotEqual(t, before.MessageID, after.MessageID)
	assert.Equal(t, "photo", after.PhotoRef)
	assert.Zero(t, after.TextMessageID)
	assert.Equal(t, []int{before.MessageID}, env.fake.Deleted)

	live, ok := env.fake.Live(after.MessageID)
	require.True(t, ok)
	assert.True(t, live.Photo)
	assertSplitConsistent(t, after)
}

func TestApplyEditInPlaceIsIdempotent(t *testing.T) {
	env := newEnv()
	id := env.publish(t, render.Content{Text: "v1", PhotoRef: "photo"}, false)
	edit := Edit{Content: render.Content{
		Text:     "v2",
		PhotoRef: "photo",
		Buttons:  []buttons.Button{{Label: "Go", URL: "https://go.dev"}},
	}}

	require.NoError(t, env.mut.ApplyEdit(context.Background(), id, edit))
	first := env.post(t, id)
	require.NoError(t, env.mut.ApplyEdit(context.Background(), id, edit))
	second := env.post(t, id)

	assert.Equal(t, first.MessageID, second.MessageID)
	assert.Equal(t, first.TextMessageID, second.TextMessageID)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Buttons, second.Buttons)
	assert.Empty(t, env.fake.Deleted)
	assert.Len(t, env.fake.Sent, 1)

	live, _ := env.fake.Live(second.MessageID)
	assert.Equal(t, "v2", live.Text)
	assert.Equal(t, edit.Content.Buttons, live.Buttons)
}

func TestApplyEditSplitInPlace(t *testing.T) {
	env := newEnv()
	long := strings.Repeat("a", 1500)
	id := env.publish(t, render.Content{Text: long, PhotoRef: "photo"}, true)
	before := env.post(t, id)
	require.True(t, before.Split())

	newText := strings.Repeat("b", 1600)
	err := env.mut.ApplyEdit(context.Background(), id, Edit{Content: render.Content{Text: newText, PhotoRef: "photo"}, SplitMode: true})
	require.NoError(t, err)

	after := env.post(t, id)
	assert.Equal(t, before.MessageID, after.MessageID)
	assert.Equal(t, before.TextMessageID, after.TextMessageID)
	assert.ElementsMatch(t, []int{before.MessageID, before.TextMessageID}, env.fake.Edited)

	caption, _ := env.fake.Live(after.MessageID)
	assert.Equal(t, strings.Repeat("b", 1023)+"…", caption.Text)
	body, _ := env.fake.Live(after.TextMessageID)
	assert.Equal(t, newText, body.Text)
	assertSplitConsistent(t, after)
}

func TestApplyEditLeavingSplitReplaces(t *testing.T) {
	env := newEnv()
	id := env.publish(t, render.Content{Text: strings.Repeat("a", 1500), PhotoRef: "photo"}, true)
	before := env.post(t, id)

	err := env.mut.ApplyEdit(context.Background(), id, Edit{Content: render.Content{Text: "short now", PhotoRef: "photo"}})
	require.NoError(t, err)

	after := env.post(t, id)
	assert.Zero(t, after.TextMessageID)
	assert.NotEqual(t, before.MessageID, after.MessageID)
	assert.ElementsMatch(t, []int{before.MessageID, before.TextMessageID}, env.fake.Deleted)
	assert.Equal(t, []int{after.MessageID}, env.fake.LiveIDs())
	assertSplitConsistent(t, after)
}

func TestApplyEditRemovePhotoReplaces(t *testing.T) {
	env := newEnv()
	id := env.publish(t, render.Content{Text: "pic", PhotoRef: "photo"}, false)

	require.NoError(t, env.mut.ApplyEdit(context.Background(), id, Edit{Content: render.Content{Text: "no pic"}, SplitMode: true}))

	after := env.post(t, id)
	assert.Empty(t, after.PhotoRef)
	assert.Zero(t, after.TextMessageID)
	live, _ := env.fake.Live(after.MessageID)
	assert.False(t, live.Photo)
}

func TestApplyEditNeedsChoice(t *testing.T) {
	env := newEnv()
	id := env.publish(t, render.Content{Text: "Hello"}, false)

	err := env.mut.ApplyEdit(context.Background(), id, Edit{Content: render.Content{Text: strings.Repeat("x", 2000), PhotoRef: "photo"}})
	assert.ErrorIs(t, err, render.ErrNeedsChoice)
	assert.Empty(t, env.fake.Deleted)
	assert.Equal(t, "Hello", env.post(t, id).Text)
}

func TestApplyEditNotFound(t *testing.T) {
	env := newEnv()
	err := env.mut.ApplyEdit(context.Background(), "1_1", Edit{Content: render.Content{Text: "x"}})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestApplyEditSwallowsMissingOldMessage(t *testing.T) {
	env := newEnv()
	id := env.publish(t, render.Content{Text: "Hello"}, false)
	before := env.post(t, id)
	env.fake.Remove(before.MessageID)

	require.NoError(t, env.mut.ApplyEdit(context.Background(), id, Edit{Content: render.Content{Text: "Hello", PhotoRef: "p"}}))
	assert.NotEqual(t, before.MessageID, env.post(t, id).MessageID)
}

func TestApplyEditSkipsFailedDeletion(t *testing.T) {
	env := newEnv()
	id := env.publish(t, render.Content{Text: "Hello"}, false)
	env.fake.DeleteErr = errors.New("Forbidden: not enough rights to delete")

	require.NoError(t, env.mut.ApplyEdit(context.Background(), id, Edit{Content: render.Content{Text: "Hello", PhotoRef: "p"}}))
	assert.Equal(t, "p", env.post(t, id).PhotoRef)
}

func TestApplyEditSurfacesEditFailure(t *testing.T) {
	env := newEnv()
	id := env.publish(t, render.Content{Text: "Hello"}, false)
	env.fake.EditErr = errors.New("Too Many Requests: retry after 3")

	err := env.mut.ApplyEdit(context.Background(), id, Edit{Content: render.Content{Text: "Changed"}})
	assert.ErrorIs(t, err, env.fake.EditErr)
	assert.Equal(t, "Hello", env.post(t, id).Text)
}

func TestDeletePost(t *testing.T) {
	env := newEnv()
	id := env.publish(t, render.Content{Text: strings.Repeat("a", 1500), PhotoRef: "photo"}, true)
	post := env.post(t, id)
	env.fake.Remove(post.TextMessageID)

	require.NoError(t, env.mut.DeletePost(context.Background(), id))
	assert.Equal(t, []int{post.MessageID}, env.fake.Deleted)
	assert.Empty(t, env.fake.LiveIDs())
	assert.Zero(t, env.store.Posts())

	assert.ErrorIs(t, env.mut.DeletePost(context.Background(), id), database.ErrNotFound)
}
