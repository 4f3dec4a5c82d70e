package line

import (
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Platform limits on buttons templates.
const (
	maxTemplateTitle = 40
	maxTemplateText  = 60
	maxAltText       = 400
	maxQuickReplies  = 13
)

// TextWithMenu builds a text message, attaching the menu entries as quick
// reply buttons when any are given.
func TextWithMenu(text string, menu []string) messaging_api.MessageInterface {
	msg := &messaging_api.TextMessage{Text: text}
	if len(menu) == 0 {
		return msg
	}
	if len(menu) > maxQuickReplies {
		menu = menu[:maxQuickReplies]
	}
	items := make([]messaging_api.QuickReplyItem, 0, len(menu))
	for _, label := range menu {
		items = append(items, messaging_api.QuickReplyItem{
			Type: "action",
			Action: &messaging_api.MessageAction{
				Label: label,
				Text:  label,
			},
		})
	}
	msg.QuickReply = &messaging_api.QuickReply{Items: items}
	return msg
}

// Card builds an advisor recommendation. With an image it renders as a
// buttons template whose single action restarts the dialogue with
// restartText, otherwise as plain text.
func Card(name, description, imageURL, restartText string) messaging_api.MessageInterface {
	if imageURL == "" {
		return &messaging_api.TextMessage{
			Text: fmt.Sprintf("Our recommended advisor is %s!\n%s", name, description),
		}
	}
	if restartText == "" {
		restartText = "Start"
	}
	return &messaging_api.TemplateMessage{
		AltText: truncate(fmt.Sprintf("Our recommended advisor is %s!", name), maxAltText),
		Template: &messaging_api.ButtonsTemplate{
			ThumbnailImageUrl: imageURL,
			Title:             truncate(name, maxTemplateTitle),
			Text:              truncate(description, maxTemplateText),
			Actions: []messaging_api.ActionInterface{
				&messaging_api.MessageAction{
					Label: "Start over",
					Text:  restartText,
				},
			},
		},
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
