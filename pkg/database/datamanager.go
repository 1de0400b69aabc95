package database

import (
	"container/list"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/GuardBotGo/pkg/logger"
	"github.com/PancyStudios/GuardBotGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DataManagerOptions contains configuration for a DataManager
type DataManagerOptions struct {
	MaxCacheSize int
}

// CacheManager provides shared caching across DataManagers
type CacheManager struct {
	cache     map[string]*list.Element
	cacheList *list.List
	mu        sync.Mutex
}

type cacheEntry struct {
	key   string
	value interface{}
}

var globalCacheManager = &CacheManager{
	cache:     make(map[string]*list.Element),
	cacheList: list.New(),
}

// Collection names
const (
	UsersCollection  = "users"
	GroupsCollection = "groups"
)

// global DataManagers for shared collections
var (
	GlobalUserDM  *DataManager[models.User]
	GlobalGroupDM *DataManager[models.Group]
)

// InitGlobalDataManagers initializes shared DataManager instances
func InitGlobalDataManagers(db *Database) {
	GlobalUserDM = NewDataManager[models.User](UsersCollection, db)
	GlobalGroupDM = NewDataManager[models.Group](GroupsCollection, db)
}

// DataManager provides cached access to a MongoDB collection
type DataManager[T any] struct {
	name       string
	dbInstance *Database
	options    DataManagerOptions
}

// DefaultDataManagerOptions returns default options for DataManager
func DefaultDataManagerOptions() DataManagerOptions {
	return DataManagerOptions{
		MaxCacheSize: 1000,
	}
}

// NewDataManager creates a new DataManager for a collection. The collection
// handle is resolved on every call so a manager built while offline starts
// working once the database reconnects.
func NewDataManager[T any](collectionName string, db *Database, opts ...DataManagerOptions) *DataManager[T] {
	dmOptions := DefaultDataManagerOptions()
	if len(opts) > 0 {
		dmOptions = opts[0]
	}

	return &DataManager[T]{
		name:       collectionName,
		dbInstance: db,
		options:    dmOptions,
	}
}

// Name returns the collection name
func (dm *DataManager[T]) Name() string {
	return dm.name
}

func (dm *DataManager[T]) collection() *mongo.Collection {
	if !dm.dbInstance.Connected() {
		return nil
	}
	return dm.dbInstance.GetCollection(dm.name)
}

// generateCacheKey creates a deterministic key from a query. Keys are sorted
// so map iteration order does not matter.
func (dm *DataManager[T]) generateCacheKey(query bson.M) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, query[k]))
	}

	return fmt.Sprintf("%s:{%s}", dm.name, strings.Join(parts, ","))
}

func (dm *DataManager[T]) cached(key string) (*T, bool) {
	globalCacheManager.mu.Lock()
	defer globalCacheManager.mu.Unlock()

	elem, exists := globalCacheManager.cache[key]
	if !exists {
		return nil, false
	}
	globalCacheManager.cacheList.MoveToFront(elem)
	return elem.Value.(*cacheEntry).value.(*T), true
}

func (dm *DataManager[T]) store(key string, value *T) {
	globalCacheManager.mu.Lock()
	defer globalCacheManager.mu.Unlock()

	entry := &cacheEntry{key: key, value: value}
	if elem, exists := globalCacheManager.cache[key]; exists {
		elem.Value = entry
		globalCacheManager.cacheList.MoveToFront(elem)
		return
	}

	globalCacheManager.cache[key] = globalCacheManager.cacheList.PushFront(entry)

	if dm.options.MaxCacheSize > 0 && globalCacheManager.cacheList.Len() > dm.options.MaxCacheSize {
		if oldest := globalCacheManager.cacheList.Back(); oldest != nil {
			delete(globalCacheManager.cache, oldest.Value.(*cacheEntry).key)
			globalCacheManager.cacheList.Remove(oldest)
		}
	}
}

// Invalidate drops the cached document for a query
func (dm *DataManager[T]) Invalidate(query bson.M) {
	key := dm.generateCacheKey(query)

	globalCacheManager.mu.Lock()
	defer globalCacheManager.mu.Unlock()

	if elem, exists := globalCacheManager.cache[key]; exists {
		globalCacheManager.cacheList.Remove(elem)
		delete(globalCacheManager.cache, key)
	}
}

// Get retrieves a document from cache or database. A missing document is
// (nil, nil).
func (dm *DataManager[T]) Get(query bson.M) (*T, error) {
	cacheKey := dm.generateCacheKey(query)
	if v, ok := dm.cached(cacheKey); ok {
		return v, nil
	}

	col := dm.collection()
	if col == nil {
		return nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result T
	if err := col.FindOne(ctx, query).Decode(&result); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		logger.Warn(fmt.Sprintf("Fallo al leer de la DB (%s): %v", dm.name, err), "DataManager")
		return nil, err
	}

	dm.store(cacheKey, &result)
	return &result, nil
}

// FindOne queries the database directly with extra find options, bypassing
// the cache
func (dm *DataManager[T]) FindOne(query bson.M, opts ...*options.FindOneOptions) (*T, error) {
	col := dm.collection()
	if col == nil {
		return nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result T
	if err := col.FindOne(ctx, query, opts...).Decode(&result); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// GetAll retrieves all documents matching a query from the database
func (dm *DataManager[T]) GetAll(query bson.M, opts ...*options.FindOptions) ([]*T, error) {
	col := dm.collection()
	if col == nil {
		return nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := col.Find(ctx, query, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []*T
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			logger.Debug(fmt.Sprintf("Documento ignorado en '%s': %v", dm.name, err), "DataManager")
			continue
		}
		results = append(results, &doc)
	}

	return results, cursor.Err()
}

// Set updates or inserts a document in the database and cache. While the
// database is offline the write is queued and (nil, nil) is returned.
func (dm *DataManager[T]) Set(query bson.M, data interface{}) (*T, error) {
	cacheKey := dm.generateCacheKey(query)

	col := dm.collection()
	if col == nil {
		logger.Warn(fmt.Sprintf("DB offline. Encolando escritura para '%s'", dm.name), "DataManager")
		dm.Invalidate(query)
		dm.dbInstance.AddToWriteQueue(QueuedOperation{
			CollectionName: dm.name,
			Query:          query,
			Operation:      opSet,
			Data:           data,
		})
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result T
	err := col.FindOneAndUpdate(ctx, query, bson.M{"$set": data}, opts).Decode(&result)
	if err != nil {
		logger.Error(fmt.Sprintf("Error en 'set' sobre '%s': %v", dm.name, err), "DataManager")
		dm.Invalidate(query)
		return nil, err
	}

	dm.store(cacheKey, &result)
	return &result, nil
}

// Update applies an update document to the record selected by query, only
// when it also satisfies cond. The cached copy is dropped rather than
// refreshed. It reports whether a record matched.
func (dm *DataManager[T]) Update(query, cond bson.M, update interface{}) (bool, error) {
	dm.Invalidate(query)

	col := dm.collection()
	if col == nil {
		return false, ErrNotConnected
	}

	filter := make(bson.M, len(query)+len(cond))
	for k, v := range query {
		filter[k] = v
	}
	for k, v := range cond {
		filter[k] = v
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		logger.Error(fmt.Sprintf("Error en 'update' sobre '%s': %v", dm.name, err), "DataManager")
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Delete removes a document from the database and cache
func (dm *DataManager[T]) Delete(query bson.M) error {
	dm.Invalidate(query)

	col := dm.collection()
	if col == nil {
		logger.Warn(fmt.Sprintf("DB offline. Encolando eliminación para '%s'", dm.name), "DataManager")
		dm.dbInstance.AddToWriteQueue(QueuedOperation{
			CollectionName: dm.name,
			Query:          query,
			Operation:      opDelete,
		})
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := col.DeleteOne(ctx, query); err != nil {
		logger.Error(fmt.Sprintf("Error en 'delete' sobre '%s': %v", dm.name, err), "DataManager")
		return err
	}
	return nil
}

// ClearCache clears the entire cache
func (dm *DataManager[T]) ClearCache() {
	globalCacheManager.mu.Lock()
	defer globalCacheManager.mu.Unlock()

	globalCacheManager.cache = make(map[string]*list.Element)
	globalCacheManager.cacheList = list.New()
}

// CacheSize returns the current cache size
func (dm *DataManager[T]) CacheSize() int {
	globalCacheManager.mu.Lock()
	defer globalCacheManager.mu.Unlock()
	return globalCacheManager.cacheList.Len()
}

// PrimeCache logs that the cache is ready (caches are filled on demand)
func (dm *DataManager[T]) PrimeCache() {
	logger.System(fmt.Sprintf("Caché para '%s' preparada (tamaño máx: %d). Se llenará bajo demanda.", dm.name, dm.options.MaxCacheSize), "DataManager")
}
