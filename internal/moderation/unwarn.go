// Package moderation holds the moderation operations shared by the slash and
// text command front ends.
package moderation

import (
	"fmt"
	"time"

	"github.com/PancyStudios/GuardBotGo/pkg/discord"
	"github.com/PancyStudios/GuardBotGo/pkg/errors"
	"github.com/PancyStudios/GuardBotGo/pkg/logger"
	"github.com/PancyStudios/GuardBotGo/pkg/models"
	"github.com/PancyStudios/GuardBotGo/pkg/parse"
)

// Reply texts
const (
	msgSpecifyOne      = "ℹ️ **Specify one user to unwarn.**"
	msgUserUnknown     = "❓ **User unknown**"
	msgNoWarnings      = "ℹ️ %s **already has no warnings.**"
	msgInvalidDate     = "⚠ **Invalid date**"
	msgWarnNotFound    = "❓ **404: Warn not found**"
	msgPardoned        = "❎ %s **pardoned** %s **for:**\n\n%s (%d/%d)"
	msgUnbannedFromAll = "♻️ You were unbanned from all of the groups!"
)

// UserDirectory finds users and removes their warns
type UserDirectory interface {
	FindUser(id string) (*models.User, error)
	RemoveWarn(user *models.User, warn models.Warn) error
}

// GroupDirectory lists the groups bans are propagated to
type GroupDirectory interface {
	ListGroups() ([]*models.Group, error)
}

// MembershipGateway talks to the chat platform on behalf of the bot
type MembershipGateway interface {
	Unban(groupID, userID string) error
	Notify(userID, text string) error
}

// EventPublisher receives an event after every successful unwarn
type EventPublisher interface {
	PublishUnwarn(ev UnwarnEvent) error
}

// UnwarnEvent describes a revoked warn
type UnwarnEvent struct {
	UserID      string    `json:"userId"`
	ModeratorID string    `json:"moderatorId"`
	WarnID      string    `json:"warnId,omitempty"`
	WarnDate    string    `json:"warnDate,omitempty"`
	Reason      string    `json:"reason"`
	Remaining   int       `json:"remaining"`
	Threshold   int       `json:"threshold"`
	Unbanned    bool      `json:"unbanned"`
	At          time.Time `json:"at"`
}

// Request is an unwarn invocation. Targets are raw user reference tokens.
type Request struct {
	Caller  *models.User
	Reason  string
	Targets []string
}

// Reply is the message to send back. Ephemeral replies are deleted after a while.
type Reply struct {
	Text      string
	Ephemeral bool
}

func ephemeral(text string) *Reply { return &Reply{Text: text, Ephemeral: true} }

func persistent(text string) *Reply { return &Reply{Text: text} }

// Unwarn revokes one warn from a user, lifting the ban on every group when
// the user was banned.
type Unwarn struct {
	Users   UserDirectory
	Groups  GroupDirectory
	Members MembershipGateway
	Events  EventPublisher

	// Clock defaults to time.Now
	Clock        func() time.Time
	ExpireAfter  time.Duration
	BanThreshold int
}

// Execute runs the operation. A nil reply with a nil error means the request
// was ignored because the caller is not an admin. Errors come only from the
// directories; every user facing outcome is a Reply.
func (u *Unwarn) Execute(req Request) (*Reply, error) {
	if !req.Caller.IsAdmin() {
		return nil, nil
	}

	if len(req.Targets) != 1 {
		return ephemeral(msgSpecifyOne), nil
	}

	target, err := u.Users.FindUser(parse.Strip(req.Targets[0]))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if target == nil {
		return ephemeral(msgUserUnknown), nil
	}

	now := u.now()
	active := models.ActiveWarns(target.Warns, now, u.ExpireAfter)
	if len(active) == 0 {
		return persistent(fmt.Sprintf(msgNoWarnings, discord.Mention(target.ID))), nil
	}

	wasBanned := target.IsBanned()
	if wasBanned {
		if err := u.unbanEverywhere(target.ID); err != nil {
			return nil, err
		}
	}

	var selected models.Warn
	if req.Reason == "" {
		selected = active[len(active)-1]
	} else if prefix, ok := ParseDatePrefix(req.Reason); ok {
		w, found := FindByDatePrefix(active, prefix)
		if !found {
			return ephemeral(msgWarnNotFound), nil
		}
		selected = w
	} else {
		return ephemeral(msgInvalidDate), nil
	}

	if err := u.Users.RemoveWarn(target, selected); err != nil {
		return nil, fmt.Errorf("remove warn: %w", err)
	}

	logger.Info(fmt.Sprintf("%s retiró una advertencia de %s (%d/%d)",
		req.Caller.ID, target.ID, len(active)-1, u.BanThreshold), "Unwarn")

	if wasBanned {
		u.bestEffort("notify", func() error {
			return u.Members.Notify(target.ID, msgUnbannedFromAll)
		})
	}

	if u.Events != nil {
		ev := UnwarnEvent{
			UserID:      target.ID,
			ModeratorID: req.Caller.ID,
			WarnID:      selected.ID,
			WarnDate:    selected.ISOString(),
			Reason:      selected.Render(),
			Remaining:   len(active) - 1,
			Threshold:   u.BanThreshold,
			Unbanned:    wasBanned,
			At:          now,
		}
		u.bestEffort("publish", func() error {
			return u.Events.PublishUnwarn(ev)
		})
	}

	return persistent(fmt.Sprintf(msgPardoned,
		discord.EscapeMarkdown(req.Caller.DisplayName()),
		discord.Mention(target.ID),
		discord.EscapeMarkdown(selected.Render()),
		len(active)-1,
		u.BanThreshold,
	)), nil
}

// unbanEverywhere fires one unban per group without waiting for the results.
func (u *Unwarn) unbanEverywhere(userID string) error {
	groups, err := u.Groups.ListGroups()
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}
	for _, g := range groups {
		groupID := g.ID
		u.bestEffort("unban "+groupID, func() error {
			return u.Members.Unban(groupID, userID)
		})
	}
	return nil
}

// bestEffort runs fn in the background and drops its outcome after logging
// it at debug level.
func (u *Unwarn) bestEffort(name string, fn func() error) {
	errors.Go(func() {
		if err := fn(); err != nil {
			logger.Debug(fmt.Sprintf("%s: %v", name, err), "Unwarn")
		}
	})
}

// ActiveWarns returns the warns of user that have not expired yet
func (u *Unwarn) ActiveWarns(user *models.User) []models.Warn {
	if user == nil {
		return nil
	}
	return models.ActiveWarns(user.Warns, u.now(), u.ExpireAfter)
}

func (u *Unwarn) now() time.Time {
	if u.Clock != nil {
		return u.Clock()
	}
	return time.Now()
}
