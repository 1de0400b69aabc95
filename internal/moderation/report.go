package moderation

import (
	"errors"
	"fmt"

	"github.com/PancyStudios/GuardBotGo/pkg/parse"
)

// ErrUserUnknown is returned by Report when no stored user matches
var ErrUserUnknown = errors.New("user unknown")

// WarnView is the public form of an active warn
type WarnView struct {
	ID        string `json:"id,omitempty"`
	Date      string `json:"date,omitempty"`
	Reason    string `json:"reason"`
	Moderator string `json:"moderator,omitempty"`
}

// WarnReport lists the active warns of a user
type WarnReport struct {
	UserID    string     `json:"userId"`
	Status    string     `json:"status"`
	Count     int        `json:"count"`
	Threshold int        `json:"threshold"`
	Warns     []WarnView `json:"warns"`
}

// Report builds the active warn report of a user reference (ID, mention or
// username)
func (u *Unwarn) Report(ref string) (*WarnReport, error) {
	user, err := u.Users.FindUser(parse.Strip(ref))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserUnknown
	}

	active := u.ActiveWarns(user)
	report := &WarnReport{
		UserID:    user.ID,
		Status:    string(user.Status),
		Count:     len(active),
		Threshold: u.BanThreshold,
		Warns:     make([]WarnView, 0, len(active)),
	}
	for _, w := range active {
		report.Warns = append(report.Warns, WarnView{
			ID:        w.ID,
			Date:      w.ISOString(),
			Reason:    w.Render(),
			Moderator: w.Moderator,
		})
	}
	return report, nil
}

// WarnsQuery answers MQTT "warns" requests carrying a "userId"
func (u *Unwarn) WarnsQuery(payload map[string]interface{}) (interface{}, error) {
	ref, _ := payload["userId"].(string)
	if ref == "" {
		return nil, errors.New("userId is required")
	}
	return u.Report(ref)
}
