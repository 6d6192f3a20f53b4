package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"parrainage-bot/internal/announce"
	"parrainage-bot/internal/config"
	"parrainage-bot/internal/ledger"
	"parrainage-bot/internal/models"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
)

type Ledger interface {
	Register(ctx context.Context, userID int64, username, displayName string) (bool, error)
	Credit(ctx context.Context, referredID, referrerID int64) (*models.Referral, error)
	CountReferralsBy(ctx context.Context, userID int64) (int64, error)
	ListReferralsBy(ctx context.Context, userID int64, limit int) ([]models.ReferredUser, error)
}

type Ranking interface {
	Get(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	Invalidate(ctx context.Context)
}

type Announcer interface {
	Enqueue(ann announce.Announcement)
}

type Bot struct {
	Instance  *telego.Bot
	Ledger    Ledger
	Ranking   Ranking
	Announcer Announcer
	Config    *config.Config
	// Username is used to build referral links; fetched with getMe when not configured.
	Username string
}

// NewBot creates the telego client. Announcer is left nil (announcements off) and can be
// set afterwards, since announcers usually send through b.Instance.
func NewBot(cfg *config.Config, l Ledger, ranking Ranking) (*Bot, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}

	tgBot, err := telego.NewBot(cfg.BotToken, telego.WithDefaultLogger(false, true))
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		Instance: tgBot,
		Ledger:   l,
		Ranking:  ranking,
		Config:   cfg,
		Username: cfg.BotUsername,
	}, nil
}

// Start polls for updates and blocks until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.Username == "" {
		me, err := b.Instance.GetMe(ctx)
		if err != nil {
			return fmt.Errorf("failed to get bot info: %w", err)
		}
		b.Username = me.Username
	}

	updates, err := b.Instance.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	handler, err := th.NewBotHandler(b.Instance, updates)
	if err != nil {
		return fmt.Errorf("failed to create update handler: %w", err)
	}

	// /start [referrer id]
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		if message.From == nil {
			return nil
		}
		text := b.start(ctx.Context(), message.From, message.Text)

		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), text).
			WithReplyMarkup(menuKeyboard()))
		return nil
	}, th.CommandEqual("start"))

	b.handleCommand(handler, "monlien", b.myLink)
	b.handleCommand(handler, "mesfilleuls", b.myReferrals)
	b.handleCommand(handler, "classement", b.leaderboard)
	b.handleCommand(handler, "invitation", b.invitation)

	b.handleCallback(handler, callbackLink, b.myLink)
	b.handleCallback(handler, callbackReferrals, b.myReferrals)
	b.handleCallback(handler, callbackLeaderboard, b.leaderboard)

	go func() {
		<-ctx.Done()
		if err := handler.Stop(); err != nil {
			log.Printf("Failed to stop update handler: %v", err)
		}
	}()

	log.Printf("Referral bot @%s started", b.Username)
	return handler.Start()
}

const (
	callbackLink        = "monlien"
	callbackReferrals   = "mesfilleuls"
	callbackLeaderboard = "classement"
)

func menuKeyboard() *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🔗 Mon lien").WithCallbackData(callbackLink),
			tu.InlineKeyboardButton("👥 Mes filleuls").WithCallbackData(callbackReferrals),
		),
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton("🏆 Classement").WithCallbackData(callbackLeaderboard),
		),
	)
}

type replyFunc func(ctx context.Context, from *telego.User) string

func (b *Bot) handleCommand(handler *th.BotHandler, command string, reply replyFunc) {
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		message := update.Message
		if message.From == nil {
			return nil
		}
		text := reply(ctx.Context(), message.From)
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(message.Chat.ID), text))
		return nil
	}, th.CommandEqual(command))
}

func (b *Bot) handleCallback(handler *th.BotHandler, data string, reply replyFunc) {
	handler.Handle(func(ctx *th.Context, update telego.Update) error {
		callback := update.CallbackQuery
		text := reply(ctx.Context(), &callback.From)
		_, _ = ctx.Bot().SendMessage(ctx.Context(), tu.Message(tu.ID(callback.From.ID), text))
		_ = ctx.Bot().AnswerCallbackQuery(ctx.Context(), tu.CallbackQuery(callback.ID))
		return nil
	}, th.CallbackDataEqual(data))
}

// register records the user on every interaction. Failures are logged and the
// request carries on, as the queries do not depend on the user row. A new user
// joins the leaderboard with a zero score, so the cached ranking is dropped.
func (b *Bot) register(ctx context.Context, from *telego.User) {
	created, err := b.Ledger.Register(ctx, from.ID, from.Username, from.FirstName)
	if err != nil {
		log.Printf("Failed to register user %d: %v", from.ID, err)
		return
	}
	if created {
		b.Ranking.Invalidate(ctx)
	}
}

func (b *Bot) start(ctx context.Context, from *telego.User, text string) string {
	b.register(ctx, from)

	lines := []string{fmt.Sprintf(msgWelcome, from.FirstName)}

	payload := ParseStartPayload(text)
	switch payload.Kind {
	case PayloadReferrer:
		lines = append(lines, b.credit(ctx, from, payload.ReferrerID))
	case PayloadMalformed:
		log.Printf("User %d sent malformed start payload %q", from.ID, payload.Raw)
		lines = append(lines, msgMalformed)
	default:
		lines = append(lines, msgNoPayload)
	}

	if b.Config.ChannelInviteLink != "" {
		lines = append(lines, fmt.Sprintf(msgJoinChannel, b.Config.ChannelInviteLink))
	}
	return strings.Join(lines, "\n")
}

func (b *Bot) credit(ctx context.Context, from *telego.User, referrerID int64) string {
	_, err := b.Ledger.Credit(ctx, from.ID, referrerID)
	if err != nil {
		if !ledger.IsRejection(err) {
			log.Printf("Failed to credit referral of %d by %d: %v", from.ID, referrerID, err)
		}
		return rejectionText(err)
	}

	log.Printf("User %d invited by %d", from.ID, referrerID)
	b.Ranking.Invalidate(ctx)
	if b.Announcer != nil {
		b.Announcer.Enqueue(announce.Announcement{
			ReferredID:   from.ID,
			ReferredName: announcedName(from.Username, from.FirstName),
			ReferrerID:   referrerID,
		})
	}
	return msgCredited
}

func (b *Bot) myLink(ctx context.Context, from *telego.User) string {
	b.register(ctx, from)

	count, err := b.Ledger.CountReferralsBy(ctx, from.ID)
	if err != nil {
		log.Printf("Failed to count referrals of %d: %v", from.ID, err)
		return msgFailure
	}
	return linkText(referralLink(b.Username, from.ID), count)
}

func (b *Bot) myReferrals(ctx context.Context, from *telego.User) string {
	b.register(ctx, from)

	referred, err := b.Ledger.ListReferralsBy(ctx, from.ID, b.Config.ListLimit)
	if err != nil {
		log.Printf("Failed to list referrals of %d: %v", from.ID, err)
		return msgFailure
	}
	return referralsText(referred)
}

func (b *Bot) leaderboard(ctx context.Context, from *telego.User) string {
	b.register(ctx, from)

	entries, err := b.Ranking.Get(ctx, b.Config.LeaderboardLimit)
	if err != nil {
		log.Printf("Failed to load leaderboard: %v", err)
		return msgFailure
	}
	return leaderboardText(entries)
}

func (b *Bot) invitation(ctx context.Context, from *telego.User) string {
	b.register(ctx, from)
	return invitationText(b.Config.ChannelInviteLink)
}
