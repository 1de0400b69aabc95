package events

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

type recordingStores struct {
	profiles []string
	added    []string
	removed  []string
	err      error
}

func (r *recordingStores) UpsertProfile(id, firstName, _, username string) error {
	if r.err != nil {
		return r.err
	}
	r.profiles = append(r.profiles, id+":"+firstName+":"+username)
	return nil
}

func (r *recordingStores) AddGroup(id, title string) error {
	r.added = append(r.added, id+":"+title)
	return nil
}

func (r *recordingStores) RemoveGroup(id string) error {
	r.removed = append(r.removed, id)
	return nil
}

func newTestHandlers() (*handlers, *recordingStores) {
	r := &recordingStores{}
	return newHandlers(Stores{Profiles: r, Groups: r}), r
}

func TestTrackUserSkipsUnchangedProfiles(t *testing.T) {
	h, r := newTestHandlers()

	u := &discordgo.User{ID: "42", Username: "bob", GlobalName: "Bob"}
	h.trackUser(u)
	h.trackUser(u)
	h.trackUser(&discordgo.User{ID: "42", Username: "bobby", GlobalName: "Bob"})

	assert.Equal(t, []string{"42:Bob:bob", "42:Bob:bobby"}, r.profiles)
}

func TestTrackUserIgnoresBots(t *testing.T) {
	h, r := newTestHandlers()

	h.trackUser(&discordgo.User{ID: "7", Username: "bot", Bot: true})
	h.trackUser(nil)

	assert.Empty(t, r.profiles)
}

func TestTrackUserRetriesAfterFailure(t *testing.T) {
	h, r := newTestHandlers()
	u := &discordgo.User{ID: "42", Username: "bob"}

	r.err = errors.New("offline")
	h.trackUser(u)
	r.err = nil
	h.trackUser(u)

	assert.Equal(t, []string{"42::bob"}, r.profiles)
}

func TestGuildDirectory(t *testing.T) {
	h, r := newTestHandlers()

	h.guildJoined(&discordgo.Guild{ID: "g1", Name: "Uno"})
	h.guildLeft(&discordgo.Guild{ID: "g1", Unavailable: true})
	h.guildLeft(&discordgo.Guild{ID: "g1"})

	assert.Equal(t, []string{"g1:Uno"}, r.added)
	assert.Equal(t, []string{"g1"}, r.removed)
}
