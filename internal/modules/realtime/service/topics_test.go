package realtime

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
)

func TestChannelsForTopics(t *testing.T) {
	id := uuid.MustParse("0190a6f1-0000-7000-8000-00000000000a")
	swapCh := "swap_requests:" + id.String()

	tests := []struct {
		topics string
		want   []string
	}{
		{"", []string{swapCh, ProfilesChannel, MessagesChannel}},
		{"swaps", []string{swapCh}},
		{"swaps, profiles,swaps", []string{swapCh, ProfilesChannel}},
		{"MESSAGES,", []string{MessagesChannel}},
	}
	for _, tt := range tests {
		got, err := ChannelsForTopics(id, tt.topics)
		if err != nil {
			t.Fatalf("ChannelsForTopics(%q): %v", tt.topics, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ChannelsForTopics(%q) = %v, want %v", tt.topics, got, tt.want)
		}
	}

	if _, err := ChannelsForTopics(id, "swaps,gossip"); err == nil {
		t.Fatal("expected error for unknown topic")
	}
}

func TestNopPublisher(t *testing.T) {
	p := NewPublisher(nil)
	ctx := context.Background()

	p.PublishSwap(ctx, EventInsert, &entity.SwapRequest{})
	p.PublishProfile(ctx, EventUpdate, &entity.Profile{})
	p.PublishMessage(ctx, &entity.PlatformMessage{})

	if _, err := p.Subscribe(ctx, ProfilesChannel); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Subscribe err = %v", err)
	}
}
