package database

import (
	"context"
	"fmt"

	"homeward/config"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/valkey-io/valkey-go"
)

type CacheClient valkey.Client

// Valkey database index organization
const (
	// GENERAL_CACHE_INDEX (DB 0) - query-result caching (active property lists etc.)
	GENERAL_CACHE_INDEX = iota

	// EVENTS_CACHE_INDEX (DB 1) - pub/sub fan-out for dashboard updates
	EVENTS_CACHE_INDEX
)

type Cache struct {
	General CacheClient
	Events  CacheClient
}

func (s *DB) initializeCacheDB(config config.Config) error {
	log := logger.New("database").Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.ErrMsg("cache address or port is empty")
	}

	var cacheDB Cache
	var err error

	cacheDB.General, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    GENERAL_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create general valkey client", err)
	}

	cacheDB.Events, err = valkey.NewClient(
		valkey.ClientOption{
			InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
			SelectDB:    EVENTS_CACHE_INDEX,
		},
	)
	if err != nil {
		return log.Err("failed to create events valkey client", err)
	}

	s.Cache = cacheDB
	return nil
}

func (s *DB) closeCacheDB() {
	if s.Cache.General != nil {
		s.Cache.General.Close()
	}
	if s.Cache.Events != nil {
		s.Cache.Events.Close()
	}
}

// FlushAllCaches clears every cache database, used before re-seeding
func (s *DB) FlushAllCaches() error {
	log := logger.New("database").Function("FlushAllCaches")

	clients := []CacheClient{s.Cache.General, s.Cache.Events}
	for _, client := range clients {
		if client == nil {
			continue
		}
		if err := client.Do(context.Background(), client.B().Flushdb().Build()).Error(); err != nil {
			return log.Err("failed to flush cache database", err)
		}
	}

	log.Info("Flushed all cache databases")
	return nil
}
