package moderation

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/GuardBotGo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeUsers struct {
	mu      sync.Mutex
	users   map[string]*models.User
	removed []models.Warn
	calls   int
	findErr error
}

func (f *fakeUsers) FindUser(id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.users[id], nil
}

func (f *fakeUsers) RemoveWarn(user *models.User, warn models.Warn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	warns, ok := models.RemoveWarn(user.Warns, warn)
	if !ok {
		return errors.New("warn not stored")
	}
	user.Warns = warns
	f.removed = append(f.removed, warn)
	return nil
}

type fakeGroups struct {
	groups []*models.Group
	calls  int
}

func (f *fakeGroups) ListGroups() ([]*models.Group, error) {
	f.calls++
	return f.groups, nil
}

type fakeGateway struct {
	mu        sync.Mutex
	unbans    []string
	notified  []string
	notifyErr error
}

func (f *fakeGateway) Unban(groupID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unbans = append(f.unbans, groupID+":"+userID)
	return nil
}

func (f *fakeGateway) Notify(userID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, userID)
	return f.notifyErr
}

func (f *fakeGateway) unbanCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.unbans)
}

func (f *fakeGateway) notifyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.notified)
}

type fakeEvents struct {
	ch chan UnwarnEvent
}

func (f *fakeEvents) PublishUnwarn(ev UnwarnEvent) error {
	f.ch <- ev
	return nil
}

type fixture struct {
	op      *Unwarn
	users   *fakeUsers
	groups  *fakeGroups
	gateway *fakeGateway
	admin   *models.User
	target  *models.User
}

func newFixture(warns ...models.Warn) *fixture {
	target := &models.User{ID: "42", FirstName: "Bob", Status: models.StatusNormal, Warns: warns}
	f := &fixture{
		users:   &fakeUsers{users: map[string]*models.User{"42": target, "bob": target}},
		groups:  &fakeGroups{groups: []*models.Group{{ID: "g1"}, {ID: "g2"}, {ID: "g3"}}},
		gateway: &fakeGateway{},
		admin:   &models.User{ID: "1", FirstName: "Ana", Status: models.StatusAdmin},
		target:  target,
	}
	f.op = &Unwarn{
		Users:        f.users,
		Groups:       f.groups,
		Members:      f.gateway,
		Clock:        func() time.Time { return testNow },
		ExpireAfter:  30 * 24 * time.Hour,
		BanThreshold: 3,
	}
	return f
}

func daysAgo(n int) time.Time {
	return testNow.Add(-time.Duration(n) * 24 * time.Hour)
}

func TestUnwarnIgnoresNonAdmins(t *testing.T) {
	f := newFixture(models.NewWarn("a", daysAgo(1), "spam"))

	for _, caller := range []*models.User{nil, {ID: "2", Status: models.StatusNormal}, {ID: "3", Status: models.StatusBanned}} {
		reply, err := f.op.Execute(Request{Caller: caller, Targets: []string{"<@42>"}})
		require.NoError(t, err)
		assert.Nil(t, reply)
	}

	assert.Zero(t, f.users.calls)
	assert.Zero(t, f.groups.calls)
	assert.Len(t, f.target.Warns, 1)
}

func TestUnwarnRequiresExactlyOneTarget(t *testing.T) {
	f := newFixture(models.NewWarn("a", daysAgo(1), "spam"))

	for _, targets := range [][]string{nil, {"<@42>", "@bob"}} {
		reply, err := f.op.Execute(Request{Caller: f.admin, Targets: targets})
		require.NoError(t, err)
		require.NotNil(t, reply)
		assert.Equal(t, msgSpecifyOne, reply.Text)
		assert.True(t, reply.Ephemeral)
	}

	assert.Zero(t, f.users.calls)
	assert.Zero(t, f.groups.calls)
}

func TestUnwarnUnknownUser(t *testing.T) {
	f := newFixture(models.NewWarn("a", daysAgo(1), "spam"))

	reply, err := f.op.Execute(Request{Caller: f.admin, Targets: []string{"<@999>"}})

	require.NoError(t, err)
	assert.Equal(t, msgUserUnknown, reply.Text)
	assert.True(t, reply.Ephemeral)
	assert.Empty(t, f.users.removed)
}

func TestUnwarnNoActiveWarnings(t *testing.T) {
	expired := models.NewWarn("old", daysAgo(60), "spam")
	f := newFixture(expired)

	reply, err := f.op.Execute(Request{Caller: f.admin, Targets: []string{"@bob"}})

	require.NoError(t, err)
	assert.Equal(t, "ℹ️ <@42> **already has no warnings.**", reply.Text)
	assert.False(t, reply.Ephemeral)
	assert.Equal(t, []models.Warn{expired}, f.target.Warns)
}

func TestUnwarnRemovesLastActiveWarn(t *testing.T) {
	first := models.NewWarn("a", daysAgo(10), "spam")
	second := models.NewWarn("b", daysAgo(5), "flood")
	expired := models.NewWarn("c", daysAgo(90), "old")
	f := newFixture(first, second, expired)

	reply, err := f.op.Execute(Request{Caller: f.admin, Targets: []string{"<@!42>"}})

	require.NoError(t, err)
	assert.Equal(t, "❎ Ana **pardoned** <@42> **for:**\n\nflood (1/3)", reply.Text)
	assert.False(t, reply.Ephemeral)
	require.Len(t, f.users.removed, 1)
	assert.Equal(t, "b", f.users.removed[0].ID)

	ids := make([]string, 0, len(f.target.Warns))
	for _, w := range f.target.Warns {
		ids = append(ids, w.ID)
	}
	assert.Equal(t, []string{"a", "c"}, ids)
	assert.Zero(t, f.groups.calls)
}

func TestUnwarnByDatePrefix(t *testing.T) {
	jan := models.NewWarn("jan", time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), "spam")
	dec := models.NewWarn("dec", time.Date(2023, 12, 1, 9, 0, 0, 0, time.UTC), "flood")
	f := newFixture(jan, dec)
	f.op.ExpireAfter = 0

	reply, err := f.op.Execute(Request{Caller: f.admin, Targets: []string{"@bob"}, Reason: "2024-01"})

	require.NoError(t, err)
	assert.Contains(t, reply.Text, "spam (1/3)")
	require.Len(t, f.target.Warns, 1)
	assert.Equal(t, "dec", f.target.Warns[0].ID)
}

func TestUnwarnDatePrefixNotFound(t *testing.T) {
	f := newFixture(models.NewWarn("a", daysAgo(1), "spam"))

	reply, err := f.op.Execute(Request{Caller: f.admin, Targets: []string{"@bob"}, Reason: "2019-05-04 10"})

	require.NoError(t, err)
	assert.Equal(t, msgWarnNotFound, reply.Text)
	assert.True(t, reply.Ephemeral)
	assert.Len(t, f.target.Warns, 1)
}

func TestUnwarnInvalidDate(t *testing.T) {
	f := newFixture(models.NewWarn("a", daysAgo(1), "spam"), models.NewWarn("b", daysAgo(2), "flood"))

	reply, err := f.op.Execute(Request{Caller: f.admin, Targets: []string{"@bob"}, Reason: "not-a-date"})

	require.NoError(t, err)
	assert.Equal(t, msgInvalidDate, reply.Text)
	assert.True(t, reply.Ephemeral)
	assert.Empty(t, f.users.removed)
	assert.Len(t, f.target.Warns, 2)
}

func TestUnwarnBannedUserIsUnbannedEverywhere(t *testing.T) {
	f := newFixture(models.NewWarn("a", daysAgo(1), "spam"))
	f.target.Status = models.StatusBanned
	f.gateway.notifyErr = errors.New("Forbidden: cannot send messages to this user")

	reply, err := f.op.Execute(Request{Caller: f.admin, Targets: []string{"@bob"}})

	require.NoError(t, err)
	assert.Equal(t, "❎ Ana **pardoned** <@42> **for:**\n\nspam (0/3)", reply.Text)
	assert.Eventually(t, func() bool { return f.gateway.unbanCount() == 3 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return f.gateway.notifyCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{"g1:42", "g2:42", "g3:42"}, f.gateway.unbans)
	assert.Equal(t, models.StatusBanned, f.target.Status)
}

func TestUnwarnBannedUserUnbannedEvenWhenSelectionFails(t *testing.T) {
	f := newFixture(models.NewWarn("a", daysAgo(1), "spam"))
	f.target.Status = models.StatusBanned

	reply, err := f.op.Execute(Request{Caller: f.admin, Targets: []string{"@bob"}, Reason: "garbage"})

	require.NoError(t, err)
	assert.Equal(t, msgInvalidDate, reply.Text)
	assert.Eventually(t, func() bool { return f.gateway.unbanCount() == 3 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, f.gateway.notifyCount())
	assert.Len(t, f.target.Warns, 1)
}

func TestUnwarnEscapesUserControlledText(t *testing.T) {
	f := newFixture(models.NewWarn("a", daysAgo(1), "**bold** _it_"))
	f.admin.FirstName = "A*n*a"

	reply, err := f.op.Execute(Request{Caller: f.admin, Targets: []string{"@bob"}})

	require.NoError(t, err)
	assert.Equal(t, "❎ A\\*n\\*a **pardoned** <@42> **for:**\n\n\\*\\*bold\\*\\* \\_it\\_ (0/3)", reply.Text)
}

func TestUnwarnRendersLegacyReason(t *testing.T) {
	data, err := bson.Marshal(bson.D{{Key: "reason", Value: bson.D{{Key: "text", Value: "flood"}}}})
	require.NoError(t, err)
	var legacy models.Warn
	require.NoError(t, bson.Unmarshal(data, &legacy))

	f := newFixture(legacy)

	reply, err := f.op.Execute(Request{Caller: f.admin, Targets: []string{"@bob"}})

	require.NoError(t, err)
	assert.Contains(t, reply.Text, "flood")
	assert.Empty(t, f.target.Warns)
}

func TestUnwarnRendersWarnWithoutReason(t *testing.T) {
	data, err := bson.Marshal(bson.D{{Key: "id", Value: "a"}, {Key: "reason", Value: nil}})
	require.NoError(t, err)
	var bare models.Warn
	require.NoError(t, bson.Unmarshal(data, &bare))

	f := newFixture(bare)

	reply, err := f.op.Execute(Request{Caller: f.admin, Targets: []string{"@bob"}})

	require.NoError(t, err)
	assert.Contains(t, reply.Text, `**for:**

{"id":"a","reason":null} (0/3)`)
}

func TestUnwarnPublishesEvent(t *testing.T) {
	f := newFixture(models.NewWarn("a", daysAgo(1), "spam"))
	events := &fakeEvents{ch: make(chan UnwarnEvent, 1)}
	f.op.Events = events

	_, err := f.op.Execute(Request{Caller: f.admin, Targets: []string{"@bob"}})
	require.NoError(t, err)

	select {
	case ev := <-events.ch:
		assert.Equal(t, "42", ev.UserID)
		assert.Equal(t, "1", ev.ModeratorID)
		assert.Equal(t, "a", ev.WarnID)
		assert.Equal(t, 0, ev.Remaining)
		assert.Equal(t, testNow, ev.At)
	case <-time.After(time.Second):
		t.Fatal("unwarn event was not published")
	}
}

func TestUnwarnPropagatesDirectoryErrors(t *testing.T) {
	f := newFixture(models.NewWarn("a", daysAgo(1), "spam"))
	f.users.findErr = errors.New("database not connected")

	reply, err := f.op.Execute(Request{Caller: f.admin, Targets: []string{"@bob"}})

	assert.Nil(t, reply)
	assert.ErrorIs(t, err, f.users.findErr)
}
