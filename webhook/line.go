package webhook

import (
	"context"
	"fmt"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// LineReplier sends replies through the LINE Messaging API. A nil httpClient
// uses the default transport.
func LineReplier(channelAccessToken string, httpClient *http.Client) (ReplyFunc, error) {
	var opts []messaging_api.MessagingApiAPIOption
	if httpClient != nil {
		opts = append(opts, messaging_api.WithHTTPClient(httpClient))
	}
	bot, err := messaging_api.NewMessagingApiAPI(channelAccessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("line replier: %w", err)
	}

	return func(ctx context.Context, replyToken, text string) error {
		_, err := bot.ReplyMessage(&messaging_api.ReplyMessageRequest{
			ReplyToken: replyToken,
			Messages: []messaging_api.MessageInterface{
				messaging_api.TextMessage{Text: text},
			},
		})
		if err != nil {
			return fmt.Errorf("line reply: %w", err)
		}
		return nil
	}, nil
}
