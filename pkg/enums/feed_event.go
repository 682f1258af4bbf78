package enums

import (
	"fmt"
	"strings"
)

// FeedEventType is the row-level change kind carried on the change feed.
type FeedEventType string

const (
	FeedEventInsert FeedEventType = "INSERT"
	FeedEventUpdate FeedEventType = "UPDATE"
	FeedEventDelete FeedEventType = "DELETE"
)

var validFeedEventTypes = []FeedEventType{FeedEventInsert, FeedEventUpdate, FeedEventDelete}

func (f FeedEventType) String() string {
	return string(f)
}

func (f FeedEventType) IsValid() bool {
	for _, candidate := range validFeedEventTypes {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFeedEventType accepts any casing.
func ParseFeedEventType(value string) (FeedEventType, error) {
	upper := FeedEventType(strings.ToUpper(strings.TrimSpace(value)))
	if upper.IsValid() {
		return upper, nil
	}
	return "", fmt.Errorf("invalid feed event type %q", value)
}
