package discord

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu       sync.Mutex
	unbans   []string
	sent     map[string]string
	deleted  []string
	dmErr    error
	unbanErr error

	interactionDeletes int32
}

func (f *fakeSession) GuildBanDelete(guildID, userID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unbans = append(f.unbans, guildID+"/"+userID)
	return f.unbanErr
}

func (f *fakeSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.dmErr != nil {
		return nil, f.dmErr
	}
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sent == nil {
		f.sent = make(map[string]string)
	}
	f.sent[channelID] = content
	return &discordgo.Message{ID: "m1", ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, channelID+"/"+messageID)
	return nil
}

func (f *fakeSession) InteractionResponseDelete(_ *discordgo.Interaction, _ ...discordgo.RequestOption) error {
	atomic.AddInt32(&f.interactionDeletes, 1)
	return nil
}

func (f *fakeSession) deletedMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func TestGatewayUnban(t *testing.T) {
	s := &fakeSession{}
	g := NewGateway(s)

	require.NoError(t, g.Unban("g1", "42"))
	assert.Equal(t, []string{"g1/42"}, s.unbans)

	s.unbanErr = errors.New("404 Unknown Ban")
	err := g.Unban("g2", "42")
	assert.ErrorIs(t, err, s.unbanErr)
}

func TestGatewayNotify(t *testing.T) {
	s := &fakeSession{}
	g := NewGateway(s)

	require.NoError(t, g.Notify("42", "hola"))
	assert.Equal(t, "hola", s.sent["dm-42"])

	s.dmErr = errors.New("50007 Cannot send messages to this user")
	assert.ErrorIs(t, g.Notify("42", "hola"), s.dmErr)
}

func TestSchedulerDeletesAfterTTL(t *testing.T) {
	s := &fakeSession{}
	d := NewDeletionScheduler(s, 10*time.Millisecond)

	d.ScheduleMessage("c1", "m1")
	d.ScheduleInteraction(&discordgo.Interaction{ID: "i1"})

	assert.Eventually(t, func() bool {
		return len(s.deletedMessages()) == 1 && atomic.LoadInt32(&s.interactionDeletes) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"c1/m1"}, s.deletedMessages())
	assert.Eventually(t, func() bool { return d.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSchedulerStopCancelsPending(t *testing.T) {
	s := &fakeSession{}
	d := NewDeletionScheduler(s, time.Hour)

	d.ScheduleMessage("c1", "m1")
	require.Equal(t, 1, d.Pending())

	d.Stop()
	assert.Equal(t, 0, d.Pending())

	d.ScheduleMessage("c1", "m2")
	assert.Equal(t, 0, d.Pending())
}

func TestSchedulerDisabled(t *testing.T) {
	s := &fakeSession{}
	d := NewDeletionScheduler(s, 0)

	d.ScheduleMessage("c1", "m1")
	assert.Equal(t, 0, d.Pending())

	var nilScheduler *DeletionScheduler
	assert.NotPanics(t, func() { nilScheduler.ScheduleMessage("c1", "m1") })
}
