// Package channeltest provides a recording in-memory channel for tests.
package channeltest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"channelpost-bot/internal/buttons"
	"channelpost-bot/internal/channel"
)

// Message is a message currently live in the fake channel.
type Message struct {
	Channel  string
	ID       int
	Photo    bool
	Text     string
	PhotoRef string
	Buttons  []buttons.Button
}

// Fake records every call and keeps the live messages. Setting SendErr,
// EditErr or DeleteErr makes the matching calls fail.
type Fake struct {
	mu     sync.Mutex
	nextID int
	live   map[int]Message

	Sent    []Message
	Edited  []int
	Deleted []int
	Users   map[int64][2]string

	SendErr   error
	EditErr   error
	DeleteErr error
	// FailSendAt fails the n-th send (1-based) with SendErr when set.
	FailSendAt int
	sends      int
}

// New returns an empty fake channel whose first message id is 100.
func New() *Fake {
	return &Fake{nextID: 100, live: make(map[int]Message), Users: make(map[int64][2]string)}
}

func (f *Fake) send(m Message) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	if f.SendErr != nil && (f.FailSendAt == 0 || f.FailSendAt == f.sends) {
		return 0, f.SendErr
	}
	m.ID = f.nextID
	f.nextID++
	f.live[m.ID] = m
	f.Sent = append(f.Sent, m)
	return m.ID, nil
}

// SendText implements channel.Sender.
func (f *Fake) SendText(_ context.Context, ch, text string, btns []buttons.Button) (int, error) {
	return f.send(Message{Channel: ch, Text: text, Buttons: btns})
}

// SendPhoto implements channel.Sender.
func (f *Fake) SendPhoto(_ context.Context, ch, photoRef, caption string, btns []buttons.Button) (int, error) {
	return f.send(Message{Channel: ch, Photo: true, Text: caption, PhotoRef: photoRef, Buttons: btns})
}

func (f *Fake) edit(messageID int, photo bool, text string, btns []buttons.Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EditErr != nil {
		return f.EditErr
	}
	m, ok := f.live[messageID]
	if !ok || m.Photo != photo {
		return channel.ErrMessageNotFound
	}
	f.Edited = append(f.Edited, messageID)
	m.Text, m.Buttons = text, btns
	f.live[messageID] = m
	return nil
}

// EditText edits a live text message.
func (f *Fake) EditText(_ context.Context, _ string, messageID int, text string, btns []buttons.Button) error {
	return f.edit(messageID, false, text, btns)
}

// EditCaption edits a live photo message.
func (f *Fake) EditCaption(_ context.Context, _ string, messageID int, caption string, btns []buttons.Button) error {
	return f.edit(messageID, true, caption, btns)
}

// Delete implements channel.Sender.
func (f *Fake) Delete(_ context.Context, _ string, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, ok := f.live[messageID]; !ok {
		return channel.ErrMessageNotFound
	}
	delete(f.live, messageID)
	f.Deleted = append(f.Deleted, messageID)
	return nil
}

// UserInfo returns the snapshot registered in Users.
func (f *Fake) UserInfo(_ context.Context, userID int64) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.Users[userID]
	if !ok {
		return "", "", fmt.Errorf("chat %d not found", userID)
	}
	return info[0], info[1], nil
}

// Live returns the message with id if it is still in the channel.
func (f *Fake) Live(id int) (Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.live[id]
	return m, ok
}

// LiveIDs returns the ids of all live messages in ascending order.
func (f *Fake) LiveIDs() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int, 0, len(f.live))
	for id := range f.live {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Remove drops a message as if someone deleted it by hand.
func (f *Fake) Remove(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.live, id)
}
