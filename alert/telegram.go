package alert

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// telegramNotifier sends a formatted message via the Telegram bot API.
type telegramNotifier struct {
	d        *Dispatcher
	botToken string
	chatID   string
}

func newTelegramNotifier(d *Dispatcher, cfg map[string]string) (Notifier, error) {
	token, chatID := cfg["bot_token"], cfg["chat_id"]
	if token == "" || chatID == "" {
		return nil, errors.New("telegram channel missing bot_token or chat_id")
	}
	return &telegramNotifier{d: d, botToken: token, chatID: chatID}, nil
}

func (n *telegramNotifier) Notify(ctx context.Context, evt Event) error {
	message := fmt.Sprintf(`*Monitor Status Changed*

*Monitor:* %s
*URL:* %s
*Status:* %s → *%s*
*Time:* %s`,
		evt.MonitorName, evt.MonitorURL,
		strings.ToUpper(string(evt.OldStatus)), strings.ToUpper(string(evt.NewStatus)),
		timestamp(evt))

	payload := map[string]string{
		"chat_id":    n.chatID,
		"text":       message,
		"parse_mode": "Markdown",
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.d.telegramBase, n.botToken)
	code, err := n.d.postJSON(ctx, url, payload, nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("telegram returned %d", code)
	}
	return nil
}
