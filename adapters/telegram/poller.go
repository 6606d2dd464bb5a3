package telegram

import (
	"context"
	"time"

	"amira/internal"
)

// InboundHandler receives decoded gateway events. Free text and choice
// selections arrive separately because the conversation treats them
// differently.
type InboundHandler interface {
	HandleText(ctx context.Context, externalID int64, text string)
	HandleChoice(ctx context.Context, externalID int64, payload string)
}

// Update is the subset of the Telegram update shape the bot consumes.
type Update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		From *struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
	CallbackQuery *struct {
		ID   string `json:"id"`
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Data string `json:"data"`
	} `json:"callback_query"`
}

type getUpdatesReq struct {
	Offset  int64 `json:"offset,omitempty"`
	Timeout int   `json:"timeout,omitempty"`
}

// Poller long-polls getUpdates and feeds decoded events to the handler.
type Poller struct {
	client  *Client
	handler InboundHandler
	timeout time.Duration
	logger  *internal.Logger
}

// NewPoller creates a poller over an existing client.
func NewPoller(client *Client, handler InboundHandler, timeout time.Duration, logger *internal.Logger) *Poller {
	return &Poller{
		client:  client,
		handler: handler,
		timeout: timeout,
		logger:  logger.With("[poller]"),
	}
}

// Run polls until the context is cancelled. Poll failures back off briefly
// and retry; the offset only advances past updates that were dispatched.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := p.poll(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Warn("poll failed: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			p.dispatch(ctx, u)
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
		}
	}
}

func (p *Poller) poll(ctx context.Context, offset int64) ([]Update, error) {
	// Per-poll deadline is the long-poll window plus slack for transport.
	pollCtx, cancel := context.WithTimeout(ctx, p.timeout+10*time.Second)
	defer cancel()

	var updates []Update
	err := p.client.call(pollCtx, "getUpdates", getUpdatesReq{
		Offset:  offset,
		Timeout: int(p.timeout.Seconds()),
	}, &updates)
	return updates, err
}

func (p *Poller) dispatch(ctx context.Context, u Update) {
	switch {
	case u.CallbackQuery != nil:
		p.handler.HandleChoice(ctx, u.CallbackQuery.From.ID, u.CallbackQuery.Data)
	case u.Message != nil && u.Message.Text != "":
		id := u.Message.Chat.ID
		if u.Message.From != nil {
			id = u.Message.From.ID
		}
		p.handler.HandleText(ctx, id, u.Message.Text)
	default:
		p.logger.Trace("ignoring update %d with no text or callback", u.UpdateID)
	}
}
