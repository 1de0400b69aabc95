package discord

import (
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/GuardBotGo/pkg/errors"
	"github.com/PancyStudios/GuardBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// deletionSession is the part of *discordgo.Session the scheduler uses
type deletionSession interface {
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	InteractionResponseDelete(interaction *discordgo.Interaction, options ...discordgo.RequestOption) error
}

// DeletionScheduler removes transient bot replies after a delay
type DeletionScheduler struct {
	session deletionSession
	ttl     time.Duration

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*time.Timer
	stopped bool
}

// NewDeletionScheduler creates a scheduler deleting replies after ttl. A
// ttl <= 0 disables deletion.
func NewDeletionScheduler(s deletionSession, ttl time.Duration) *DeletionScheduler {
	return &DeletionScheduler{
		session: s,
		ttl:     ttl,
		pending: make(map[uint64]*time.Timer),
	}
}

// ScheduleMessage deletes a channel message once the ttl elapses
func (d *DeletionScheduler) ScheduleMessage(channelID, messageID string) {
	d.schedule(func() error {
		return d.session.ChannelMessageDelete(channelID, messageID)
	})
}

// ScheduleInteraction deletes the original response of an interaction once
// the ttl elapses. Interaction tokens expire after 15 minutes.
func (d *DeletionScheduler) ScheduleInteraction(i *discordgo.Interaction) {
	d.schedule(func() error {
		return d.session.InteractionResponseDelete(i)
	})
}

func (d *DeletionScheduler) schedule(del func() error) {
	if d == nil || d.ttl <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	id := d.nextID
	d.nextID++
	d.pending[id] = time.AfterFunc(d.ttl, func() {
		d.mu.Lock()
		delete(d.pending, id)
		d.mu.Unlock()

		defer errors.RecoverMiddleware()()
		if err := del(); err != nil {
			logger.Debug(fmt.Sprintf("No se pudo borrar la respuesta: %v", err), "Scheduler")
		}
	})
}

// Pending returns the number of deletions still waiting
func (d *DeletionScheduler) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels every pending deletion
func (d *DeletionScheduler) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for id, t := range d.pending {
		t.Stop()
		delete(d.pending, id)
	}
}
