// Package dialog implements the conversation state machine: it advances a
// user's session one step per inbound message and resolves the final step
// into an advisor recommendation.
package dialog

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/mentorline/mentorbot/catalog"
	"github.com/mentorline/mentorbot/core/logger"
	"github.com/mentorline/mentorbot/session"
)

// Matcher resolves a category/detail pair into an advisor record.
type Matcher interface {
	Match(category, detail string) (catalog.Advisor, bool)
}

type stepHandler func(ctx context.Context, userID string, st session.State, text string) Reply

// Engine drives the dialogue: Idle -> AwaitingCategory -> AwaitingDetail,
// then the session is cleared. Handle is safe for concurrent use across
// users; deliveries for one user are serialized through the store's lock.
//
// Reset policy: an unrecognized category retries in place, while the detail
// step always clears the session after answering, matched or not. One of the
// source variants cleared only on success; this engine deliberately resets
// unconditionally so a miss never traps the user mid-conversation.
type Engine struct {
	store    session.Store
	matcher  Matcher
	menus    Menus
	handlers map[session.Step]stepHandler
}

// NewEngine wires the state machine over the given store, matcher and menus.
func NewEngine(store session.Store, matcher Matcher, menus Menus) *Engine {
	e := &Engine{
		store:   store,
		matcher: matcher,
		menus:   menus,
	}
	e.handlers = map[session.Step]stepHandler{
		session.StepIdle:             e.handleIdle,
		session.StepAwaitingCategory: e.handleCategory,
		session.StepAwaitingDetail:   e.handleDetail,
	}
	return e
}

// Menus exposes the engine's dialogue configuration.
func (e *Engine) Menus() Menus {
	return e.menus
}

// Greeting returns the prompt for a user who just added the bot.
func (e *Engine) Greeting() Reply {
	return Prompt{Text: e.helpText()}
}

// Handle advances the user's dialogue with one inbound message and returns
// the reply to render. The whole read-decide-write cycle runs under the
// user's session lock.
func (e *Engine) Handle(ctx context.Context, userID, text string) Reply {
	text = strings.TrimSpace(text)

	unlock := e.store.Lock(userID)
	defer unlock()

	st, _ := e.store.Get(userID)
	handler, ok := e.handlers[st.Step]
	if !ok {
		// Unknown step can only appear if the store was tampered with;
		// treat it as a fresh conversation.
		e.store.Delete(userID)
		handler = e.handleIdle
		st = session.State{Step: session.StepIdle}
	}
	return handler(ctx, userID, st, text)
}

func (e *Engine) handleIdle(ctx context.Context, userID string, _ session.State, text string) Reply {
	if !e.menus.IsStart(text) {
		// No session is created; repeated unrecognized input stays idempotent.
		return Prompt{Text: e.helpText()}
	}

	e.store.Set(userID, session.State{Step: session.StepAwaitingCategory})
	logger.Debug(ctx, "dialog", "session.started",
		slog.String("status", "ok"),
		slog.String("step", string(session.StepAwaitingCategory)),
	)
	return Prompt{
		Text: "What is on your mind?",
		Menu: e.menus.CategoryNames(),
	}
}

func (e *Engine) handleCategory(ctx context.Context, userID string, _ session.State, text string) Reply {
	details, ok := e.menus.Details(text)
	if !ok {
		// Retry in place; the session keeps waiting for a category.
		logger.Debug(ctx, "dialog", "category.retry",
			slog.String("status", "skip"),
			slog.String("category", logger.SanitizeLimit(text, 64)),
		)
		return Prompt{Text: "Please choose again."}
	}

	e.store.Set(userID, session.State{Step: session.StepAwaitingDetail, Category: text})
	logger.Debug(ctx, "dialog", "category.selected",
		slog.String("status", "ok"),
		slog.String("category", text),
	)
	return Prompt{
		Text: fmt.Sprintf("Tell me a bit more about %s.", text),
		Menu: details,
	}
}

func (e *Engine) handleDetail(ctx context.Context, userID string, st session.State, text string) Reply {
	// The detail step always concludes the conversation: the session is
	// cleared whether or not an advisor matches.
	e.store.Delete(userID)

	advisor, matched := e.matcher.Match(st.Category, text)
	logger.Debug(ctx, "dialog", "detail.answered",
		slog.String("status", "ok"),
		slog.String("category", st.Category),
		slog.String("detail", logger.SanitizeLimit(text, 64)),
		slog.Bool("matched", matched),
	)
	if !matched {
		return Prompt{Text: "Sorry, no advisor covers that yet. " + e.helpText()}
	}
	return AdvisorCard{
		Name:        advisor.Name,
		Description: advisor.Description,
		ImageURL:    advisor.PhotoURL,
	}
}

func (e *Engine) helpText() string {
	return fmt.Sprintf("Type %q to start a consultation!", e.menus.StartPhrases[0])
}
