package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"channelpost-bot/internal/buttons"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	atLimit := strings.Repeat("a", CaptionLimit)
	overLimit := strings.Repeat("a", CaptionLimit+1)

	cases := []struct {
		name     string
		text     string
		hasPhoto bool
		want     Decision
	}{
		{"no photo short", "hi", false, Decision{Layout: LayoutText}},
		{"no photo long", overLimit, false, Decision{Layout: LayoutText}},
		{"photo at limit", atLimit, true, Decision{Layout: LayoutPhoto}},
		{"photo over limit", overLimit, true, Decision{
			Layout:      LayoutSplit,
			NeedsChoice: true,
			Options:     []Resolution{ResolutionSplit, ResolutionDropPhoto},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.text, tc.hasPhoto, CaptionLimit))
		})
	}
}

func TestDecideNeedsChoiceOnlyForLongPhotoPosts(t *testing.T) {
	for _, n := range []int{0, 1, 10, 1023, 1024, 1025, 2000} {
		text := strings.Repeat("ж", n)
		for _, hasPhoto := range []bool{false, true} {
			d := Decide(text, hasPhoto, CaptionLimit)
			assert.Equal(t, hasPhoto && n > CaptionLimit, d.NeedsChoice, "len=%d photo=%v", n, hasPhoto)
			// Deterministic: asking twice gives the same answer.
			assert.Equal(t, d, Decide(text, hasPhoto, CaptionLimit))
		}
	}
}

func TestBuild(t *testing.T) {
	btns := []buttons.Button{{Label: "Go", URL: "https://example.com"}}

	t.Run("text only", func(t *testing.T) {
		plan, err := Build(Content{Text: "Hello", Buttons: btns}, false, CaptionLimit)
		require.NoError(t, err)
		assert.Equal(t, LayoutText, plan.Layout)
		assert.Equal(t, Message{Kind: KindText, Text: "Hello", Buttons: btns}, plan.Primary)
		assert.Nil(t, plan.Secondary)
	})

	t.Run("photo with caption", func(t *testing.T) {
		plan, err := Build(Content{Text: "Hello", Buttons: btns, PhotoRef: "file-1"}, false, CaptionLimit)
		require.NoError(t, err)
		assert.Equal(t, LayoutPhoto, plan.Layout)
		assert.Equal(t, Message{Kind: KindPhoto, Text: "Hello", Buttons: btns, PhotoRef: "file-1"}, plan.Primary)
		assert.Nil(t, plan.Secondary)
	})

	t.Run("long photo post fails closed", func(t *testing.T) {
		_, err := Build(Content{Text: strings.Repeat("x", 2000), PhotoRef: "file-1"}, false, CaptionLimit)
		assert.ErrorIs(t, err, ErrNeedsChoice)
	})

	t.Run("split", func(t *testing.T) {
		text := strings.Repeat("x", 2000)
		plan, err := Build(Content{Text: text, Buttons: btns, PhotoRef: "file-1"}, true, CaptionLimit)
		require.NoError(t, err)
		assert.Equal(t, LayoutSplit, plan.Layout)

		assert.Equal(t, KindPhoto, plan.Primary.Kind)
		assert.Empty(t, plan.Primary.Buttons)
		assert.Equal(t, CaptionLimit, utf8.RuneCountInString(plan.Primary.Text))
		assert.True(t, strings.HasSuffix(plan.Primary.Text, "…"))
		assert.Equal(t, strings.Repeat("x", CaptionLimit-1), strings.TrimSuffix(plan.Primary.Text, "…"))

		require.NotNil(t, plan.Secondary)
		assert.Equal(t, KindText, plan.Secondary.Kind)
		assert.Equal(t, text, plan.Secondary.Text)
		assert.Equal(t, btns, plan.Secondary.Buttons)
	})

	t.Run("split without photo degrades to text", func(t *testing.T) {
		plan, err := Build(Content{Text: "Hello"}, true, CaptionLimit)
		require.NoError(t, err)
		assert.Equal(t, LayoutText, plan.Layout)
		assert.Nil(t, plan.Secondary)
	})
}

func TestShortCaption(t *testing.T) {
	assert.Equal(t, "short", ShortCaption("short", 10))
	assert.Equal(t, "abcdefghi…", ShortCaption("abcdefghijklmnop", 10))
	assert.Equal(t, "привет, м…", ShortCaption("привет, мир и все", 10))
}
