package database

import (
	"github.com/PancyStudios/GuardBotGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

// GroupStore keeps the directory of guilds the bot manages
type GroupStore struct {
	dm *DataManager[models.Group]
}

// NewGroupStore creates a GroupStore backed by a DataManager
func NewGroupStore(dm *DataManager[models.Group]) *GroupStore {
	return &GroupStore{dm: dm}
}

// ListGroups returns every managed group
func (s *GroupStore) ListGroups() ([]*models.Group, error) {
	return s.dm.GetAll(bson.M{})
}

// AddGroup registers a guild, updating its title when already known. A
// group cached with the same title is not written again.
func (s *GroupStore) AddGroup(id, title string) error {
	if g, err := s.dm.Get(byID(id)); err == nil && g != nil && g.Title == title {
		return nil
	}
	_, err := s.dm.Set(byID(id), bson.M{"title": title})
	return err
}

// RemoveGroup forgets a guild
func (s *GroupStore) RemoveGroup(id string) error {
	return s.dm.Delete(byID(id))
}
