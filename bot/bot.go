// Package bot wires decoded webhook events into the dialogue engine and
// pushes the rendered replies through the outbound dispatcher.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/mentorline/mentorbot/core/line"
	"github.com/mentorline/mentorbot/core/logger"
	"github.com/mentorline/mentorbot/dialog"
)

// enqueuer matches the dispatcher's scheduling surface.
type enqueuer interface {
	Enqueue(ctx context.Context, action string, run func() error) error
}

// Bot routes platform events through the dialogue engine.
type Bot struct {
	engine     *dialog.Engine
	sender     line.Sender
	dispatcher enqueuer
	limiter    *rateLimiter
}

func New(engine *dialog.Engine, sender line.Sender, dispatcher enqueuer, rateInterval time.Duration) *Bot {
	return &Bot{
		engine:     engine,
		sender:     sender,
		dispatcher: dispatcher,
		limiter:    newRateLimiter(rateInterval),
	}
}

// HandleText advances the user's dialogue with one message and replies.
func (b *Bot) HandleText(ctx context.Context, ev line.TextEvent) {
	if !b.limiter.Allow(ev.UserID) {
		logger.Debug(ctx, "bot", "message.rate_limited",
			slog.String("rid", logger.RIDFrom(ctx)),
			slog.String("user_id", ev.UserID),
		)
		return
	}

	start := time.Now()
	reply := b.engine.Handle(ctx, ev.UserID, ev.Text)
	b.send(ctx, "reply.text", ev.ReplyToken, b.render(reply))

	logger.Debug(ctx, "bot", "message.handled",
		slog.String("rid", logger.RIDFrom(ctx)),
		slog.String("user_id", ev.UserID),
		slog.String("text", logger.SanitizeLimit(ev.Text, 64)),
		slog.Duration("duration", logger.Took(start)),
	)
}

// HandleFollow greets a user who just added the bot.
func (b *Bot) HandleFollow(ctx context.Context, ev line.FollowEvent) {
	b.send(ctx, "reply.greeting", ev.ReplyToken, b.render(b.engine.Greeting()))
}

func (b *Bot) render(reply dialog.Reply) []messaging_api.MessageInterface {
	switch r := reply.(type) {
	case dialog.Prompt:
		return []messaging_api.MessageInterface{line.TextWithMenu(r.Text, r.Menu)}
	case dialog.AdvisorCard:
		restart := ""
		if phrases := b.engine.Menus().StartPhrases; len(phrases) > 0 {
			restart = phrases[0]
		}
		return []messaging_api.MessageInterface{line.Card(r.Name, r.Description, r.ImageURL, restart)}
	default:
		return nil
	}
}

// send schedules the reply asynchronously. When the queue is saturated the
// reply runs inline so the user is not silently dropped.
func (b *Bot) send(ctx context.Context, action, replyToken string, msgs []messaging_api.MessageInterface) {
	if len(msgs) == 0 {
		return
	}
	run := func() error {
		return b.sender.Reply(replyToken, msgs)
	}
	err := b.dispatcher.Enqueue(ctx, action, run)
	if err == nil {
		return
	}
	if errors.Is(err, line.ErrQueueFull) {
		if runErr := run(); runErr != nil {
			logger.Error(ctx, "bot", "reply.fail",
				slog.String("action", action),
				slog.String("status", "fail"),
				slog.String("error", logger.Sanitize(runErr.Error())),
			)
		}
		return
	}
	logger.Error(ctx, "bot", "reply.drop",
		slog.String("action", action),
		slog.String("status", "fail"),
		slog.String("error", logger.Sanitize(err.Error())),
	)
}
