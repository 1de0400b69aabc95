package database

import (
	"fmt"

	"github.com/PancyStudios/GuardBotGo/pkg/models"
	"github.com/PancyStudios/GuardBotGo/pkg/parse"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// usernameCollation compares usernames ignoring case
var usernameCollation = &options.Collation{Locale: "en", Strength: 2}

// UserStore reads and updates user documents
type UserStore struct {
	dm *DataManager[models.User]
}

// NewUserStore creates a UserStore backed by a DataManager
func NewUserStore(dm *DataManager[models.User]) *UserStore {
	return &UserStore{dm: dm}
}

func byID(id string) bson.M {
	return bson.M{"_id": id}
}

// FindUser resolves an ID or a username. Unknown users are (nil, nil).
// Lookups always read the stored document so warns added elsewhere are seen.
func (s *UserStore) FindUser(ref string) (*models.User, error) {
	if ref == "" {
		return nil, nil
	}
	if parse.IsID(ref) {
		return s.dm.FindOne(byID(ref))
	}
	return s.dm.FindOne(bson.M{"username": ref}, options.FindOne().SetCollation(usernameCollation))
}

// RemoveWarn deletes the first stored warn equal to warn. Status is left as
// is. The removal runs on the stored array, so warns added since user was
// read are kept and a warn already removed by a concurrent call is a no-op.
func (s *UserStore) RemoveWarn(user *models.User, warn models.Warn) error {
	var (
		removed bool
		err     error
	)
	if warn.ID != "" {
		removed, err = s.dm.Update(byID(user.ID),
			bson.M{"warns.id": warn.ID},
			bson.M{"$pull": bson.M{"warns": bson.M{"id": warn.ID}}})
	} else {
		removed, err = s.removeUnidentifiedWarn(user.ID, warn)
	}
	if err != nil {
		return err
	}
	if removed {
		user.Warns, _ = models.RemoveWarn(user.Warns, warn)
		if user.Warns == nil {
			user.Warns = []models.Warn{}
		}
	}
	return nil
}

// removeUnidentifiedWarn clears the first array slot matching warn and then
// compacts the array. Older records carry no id to pull by.
func (s *UserStore) removeUnidentifiedWarn(userID string, warn models.Warn) (bool, error) {
	matched, err := s.dm.Update(byID(userID),
		bson.M{"warns": bson.M{"$elemMatch": warnMatch(warn)}},
		bson.M{"$unset": bson.M{"warns.$": ""}})
	if err != nil || !matched {
		return false, err
	}

	_, err = s.dm.Update(byID(userID), nil, bson.M{"$pull": bson.M{"warns": nil}})
	if err != nil {
		return true, fmt.Errorf("compact warns of %s: %w", userID, err)
	}
	return true, nil
}

// warnMatch selects an array element by the fields models.Warn.Equal compares
func warnMatch(w models.Warn) bson.M {
	m := bson.M{"id": bson.M{"$in": bson.A{nil, ""}}}
	if w.HasDate() {
		m["date"] = w.Date
	} else {
		m["date"] = nil
	}
	if w.Reason.IsLegacy() || w.Reason.String() != "" {
		m["reason"] = w.Reason
	} else {
		m["$or"] = bson.A{
			bson.M{"reason": ""},
			bson.M{"reason": bson.M{"$exists": false}},
		}
	}
	return m
}

// UpsertProfile stores the profile fields of a user, creating the document
// when needed. Status and warns are never touched.
func (s *UserStore) UpsertProfile(id, firstName, lastName, username string) error {
	profile := bson.M{
		"first_name": firstName,
		"last_name":  lastName,
		"username":   username,
	}
	_, err := s.dm.Set(byID(id), profile)
	return err
}

// SetStatus changes the status of a user
func (s *UserStore) SetStatus(id string, status models.UserStatus) error {
	_, err := s.dm.Set(byID(id), bson.M{"status": status})
	return err
}

// ListAdmins returns every user with admin status
func (s *UserStore) ListAdmins() ([]*models.User, error) {
	return s.dm.GetAll(bson.M{"status": models.StatusAdmin})
}
