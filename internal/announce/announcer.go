package announce

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/redis/go-redis/v9"
)

const (
	queueSize = 64
	dedupTTL  = 7 * 24 * time.Hour
)

// Sender is the part of *telego.Bot the announcer needs.
type Sender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

type Announcement struct {
	ReferredID   int64
	ReferredName string
	ReferrerID   int64
}

func (a Announcement) Text() string {
	return fmt.Sprintf("🎉 %s a été parrainé par ID %d !", a.ReferredName, a.ReferrerID)
}

// Announcer posts referral announcements to the broadcast channel in the background.
// Delivery is best effort: a full queue or a failed send is logged and dropped.
type Announcer struct {
	Bot       Sender
	Redis     *redis.Client
	ChannelID string
	queue     chan Announcement
}

func NewAnnouncer(bot Sender, rdb *redis.Client, channelID string) *Announcer {
	return &Announcer{
		Bot:       bot,
		Redis:     rdb,
		ChannelID: channelID,
		queue:     make(chan Announcement, queueSize),
	}
}

func (a *Announcer) Enabled() bool {
	return a != nil && a.ChannelID != ""
}

// Enqueue never blocks.
func (a *Announcer) Enqueue(ann Announcement) {
	if !a.Enabled() {
		return
	}
	select {
	case a.queue <- ann:
	default:
		log.Printf("Announcement queue full, dropping announcement for user %d", ann.ReferredID)
	}
}

// Start delivers queued announcements until ctx is cancelled.
func (a *Announcer) Start(ctx context.Context) {
	if !a.Enabled() {
		log.Println("CHANNEL_ID not set, announcements disabled")
		return
	}
	log.Println("Announcement worker started")

	for {
		select {
		case <-ctx.Done():
			log.Println("Announcement worker stopped")
			return
		case ann := <-a.queue:
			a.deliver(ctx, ann)
		}
	}
}

func (a *Announcer) deliver(ctx context.Context, ann Announcement) {
	if a.Redis != nil {
		key := fmt.Sprintf("announced:%d", ann.ReferredID)
		fresh, err := a.Redis.SetNX(ctx, key, ann.ReferrerID, dedupTTL).Result()
		if err != nil {
			log.Printf("Redis de-dup check failed for user %d: %v", ann.ReferredID, err)
		} else if !fresh {
			log.Printf("Referral of user %d already announced, skipping", ann.ReferredID)
			return
		}
	}

	_, err := a.Bot.SendMessage(ctx, tu.Message(channelChatID(a.ChannelID), ann.Text()))
	if err != nil {
		log.Printf("Failed to announce referral of user %d: %v", ann.ReferredID, err)
		return
	}
	log.Printf("Announced referral of user %d by %d", ann.ReferredID, ann.ReferrerID)
}
