package line

import (
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Sender pushes built messages back to the platform.
type Sender interface {
	Reply(replyToken string, msgs []messaging_api.MessageInterface) error
}

type apiSender struct {
	api *messaging_api.MessagingApiAPI
}

func NewSender(api *messaging_api.MessagingApiAPI) Sender {
	return &apiSender{api: api}
}

func (s *apiSender) Reply(replyToken string, msgs []messaging_api.MessageInterface) error {
	if len(msgs) == 0 {
		return nil
	}
	_, err := s.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   msgs,
	})
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}
