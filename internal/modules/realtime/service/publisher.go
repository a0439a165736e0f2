package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"github.com/redis/go-redis/v9"
)

const (
	TableSwapRequests     = "swap_requests"
	TableProfiles         = "profiles"
	TablePlatformMessages = "platform_messages"

	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"

	ProfilesChannel = "profiles"
	MessagesChannel = "platform_messages"
)

// Event is a change notification. Subscribers are expected to re-fetch; the
// record is a convenience snapshot.
type Event struct {
	Type      string    `json:"type"`
	Table     string    `json:"table"`
	Record    any       `json:"record"`
	Timestamp time.Time `json:"timestamp"`
}

// SwapChannel is the per-participant channel for swap request changes.
func SwapChannel(profileID uuid.UUID) string {
	return fmt.Sprintf("swap_requests:%s", profileID.String())
}

// Publisher fans change events out to subscribers. Delivery is best effort;
// failures are logged and never surface to the caller.
type Publisher interface {
	PublishSwap(ctx context.Context, eventType string, swap *entity.SwapRequest)
	PublishProfile(ctx context.Context, eventType string, profile *entity.Profile)
	PublishMessage(ctx context.Context, msg *entity.PlatformMessage)
	Subscribe(ctx context.Context, channels ...string) (*redis.PubSub, error)
}

type redisPublisher struct {
	redisClient *redis.Client
	now         func() time.Time
}

// NewPublisher returns a redis-backed publisher, or a no-op one when
// redisClient is nil.
func NewPublisher(redisClient *redis.Client) Publisher {
	if redisClient == nil {
		return nopPublisher{}
	}
	return &redisPublisher{redisClient: redisClient, now: time.Now}
}

func (p *redisPublisher) PublishSwap(ctx context.Context, eventType string, swap *entity.SwapRequest) {
	payload, err := p.encode(eventType, TableSwapRequests, swap)
	if err != nil {
		log.Printf("realtime: encode swap event: %v", err)
		return
	}

	pipe := p.redisClient.Pipeline()
	pipe.Publish(ctx, SwapChannel(swap.RequesterID), payload)
	pipe.Publish(ctx, SwapChannel(swap.RecipientID), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("realtime: publish swap %s: %v", swap.ID, err)
	}
}

func (p *redisPublisher) PublishProfile(ctx context.Context, eventType string, profile *entity.Profile) {
	p.publish(ctx, ProfilesChannel, eventType, TableProfiles, profile)
}

func (p *redisPublisher) PublishMessage(ctx context.Context, msg *entity.PlatformMessage) {
	p.publish(ctx, MessagesChannel, EventInsert, TablePlatformMessages, msg)
}

func (p *redisPublisher) Subscribe(ctx context.Context, channels ...string) (*redis.PubSub, error) {
	pubsub := p.redisClient.Subscribe(ctx, channels...)
	// Wait for confirmation that subscription is created
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to redis channels: %w", err)
	}
	return pubsub, nil
}

func (p *redisPublisher) publish(ctx context.Context, channel, eventType, table string, record any) {
	payload, err := p.encode(eventType, table, record)
	if err != nil {
		log.Printf("realtime: encode %s event: %v", table, err)
		return
	}
	if err := p.redisClient.Publish(ctx, channel, payload).Err(); err != nil {
		log.Printf("realtime: publish to %s: %v", channel, err)
	}
}

func (p *redisPublisher) encode(eventType, table string, record any) ([]byte, error) {
	return json.Marshal(Event{
		Type:      eventType,
		Table:     table,
		Record:    record,
		Timestamp: p.now().UTC(),
	})
}

type nopPublisher struct{}

func (nopPublisher) PublishSwap(context.Context, string, *entity.SwapRequest) {}
func (nopPublisher) PublishProfile(context.Context, string, *entity.Profile) {}
func (nopPublisher) PublishMessage(context.Context, *entity.PlatformMessage) {}

func (nopPublisher) Subscribe(context.Context, ...string) (*redis.PubSub, error) {
	return nil, ErrUnavailable
}
