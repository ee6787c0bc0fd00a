package redis

import (
	"fmt"

	"github.com/mcoot/colorclaim/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "colorclaim"

// resultHistoryKey returns the Redis key for the LIST of recent results, newest first
func resultHistoryKey() string {
	return fmt.Sprintf("%s:results", keyPrefix)
}

// latestResultKey returns the Redis key for a room's most recent result
func latestResultKey(room model.RoomName) string {
	return fmt.Sprintf("%s:result:%s", keyPrefix, room)
}
