package line

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/mentorline/mentorbot/core/logger"
)

// TextEvent is a decoded text message from a single user.
type TextEvent struct {
	UserID     string
	ReplyToken string
	Text       string
}

// FollowEvent is emitted when a user adds the bot as a friend.
type FollowEvent struct {
	UserID     string
	ReplyToken string
}

// EventHandler consumes decoded webhook events. Handlers run synchronously,
// one event at a time, before the webhook responds to the platform.
type EventHandler interface {
	HandleText(ctx context.Context, ev TextEvent)
	HandleFollow(ctx context.Context, ev FollowEvent)
}

// Webhook verifies LINE signatures and dispatches decoded events.
type Webhook struct {
	channelSecret string
	handler       EventHandler
}

func NewWebhook(channelSecret string, handler EventHandler) *Webhook {
	return &Webhook{channelSecret: channelSecret, handler: handler}
}

func (w *Webhook) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	start := time.Now()

	cb, err := webhook.ParseRequest(w.channelSecret, req)
	if err != nil {
		event := "webhook.parse.fail"
		if errors.Is(err, webhook.ErrInvalidSignature) {
			event = "webhook.auth.fail"
		}
		logger.Warn(req.Context(), "line", event,
			slog.String("status", logger.Status(err)),
			slog.String("error", logger.Sanitize(err.Error())),
		)
		http.Error(rw, "bad request", http.StatusBadRequest)
		return
	}

	for _, ev := range cb.Events {
		w.dispatch(req.Context(), ev)
	}

	logger.Debug(req.Context(), "line", "webhook.receive",
		slog.Int("events", len(cb.Events)),
		slog.Duration("duration", logger.Took(start)),
	)

	rw.WriteHeader(http.StatusOK)
	_, _ = rw.Write([]byte("OK"))
}

// dispatch routes one platform event to the handler. A panic in the handler
// is contained so the remaining events in the batch still run.
func (w *Webhook) dispatch(ctx context.Context, ev webhook.EventInterface) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "line", "webhook.panic",
				slog.String("status", "fail"),
				slog.Any("error", r),
			)
		}
	}()

	switch e := ev.(type) {
	case webhook.MessageEvent:
		msg, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			return
		}
		userID := sourceUserID(e.Source)
		if userID == "" || e.ReplyToken == "" {
			return
		}
		ctx = eventContext(ctx, e.WebhookEventId, userID, "text")
		w.handler.HandleText(ctx, TextEvent{
			UserID:     userID,
			ReplyToken: e.ReplyToken,
			Text:       msg.Text,
		})

	case webhook.FollowEvent:
		userID := sourceUserID(e.Source)
		if userID == "" || e.ReplyToken == "" {
			return
		}
		ctx = eventContext(ctx, e.WebhookEventId, userID, "follow")
		w.handler.HandleFollow(ctx, FollowEvent{
			UserID:     userID,
			ReplyToken: e.ReplyToken,
		})
	}
}

func eventContext(ctx context.Context, eventID, userID, handlerName string) context.Context {
	rid := eventID
	if rid == "" {
		rid = uuid.NewString()
	}
	ctx = logger.WithRID(ctx, rid)
	ctx = logger.WithUserID(ctx, userID)
	ctx = logger.WithHandler(ctx, handlerName)
	return ctx
}

func sourceUserID(src webhook.SourceInterface) string {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId
	case *webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	default:
		return ""
	}
}
