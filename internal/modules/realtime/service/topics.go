package realtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrUnavailable = errors.New("realtime is not configured")

const (
	TopicSwaps    = "swaps"
	TopicProfiles = "profiles"
	TopicMessages = "messages"
)

// ChannelsForTopics maps the comma separated topic list of a subscriber to
// redis channels. An empty list subscribes to every topic.
func ChannelsForTopics(profileID uuid.UUID, topics string) ([]string, error) {
	requested := strings.Split(topics, ",")
	if strings.TrimSpace(topics) == "" {
		requested = []string{TopicSwaps, TopicProfiles, TopicMessages}
	}

	seen := make(map[string]bool)
	var channels []string
	for _, t := range requested {
		var ch string
		switch strings.TrimSpace(strings.ToLower(t)) {
		case TopicSwaps:
			ch = SwapChannel(profileID)
		case TopicProfiles:
			ch = ProfilesChannel
		case TopicMessages:
			ch = MessagesChannel
		case "":
			continue
		default:
			return nil, fmt.Errorf("unknown topic %q", t)
		}
		if !seen[ch] {
			seen[ch] = true
			channels = append(channels, ch)
		}
	}
	return channels, nil
}
