package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	sse "github.com/r3labs/sse/v2"
	"github.com/wheelibin/daysched/internal/constants"
	"github.com/wheelibin/daysched/internal/models"
)

// Consumer listens to the transition stream of a running daemon.
type Consumer struct {
	Logger *log.Logger

	client *sse.Client
}

func NewConsumer(logger *log.Logger, url string) *Consumer {
	client := sse.NewClient(url)

	client.OnConnect(func(_ *sse.Client) {
		logger.Info("Connected to daysched, listening for transitions...", "url", url)
	})
	client.OnDisconnect(func(_ *sse.Client) {
		logger.Info("Disconnected from daysched")
	})

	return &Consumer{Logger: logger, client: client}
}

// Subscribe blocks, calling handler for every transition, until ctx is done.
func (c *Consumer) Subscribe(ctx context.Context, handler func(models.Transition)) error {
	err := c.client.SubscribeWithContext(ctx, constants.TransitionStream, func(msg *sse.Event) {
		transition, ok, err := DecodeTransition(msg)
		if err != nil {
			c.Logger.Error("Error decoding transition", "err", err)
			return
		}
		if ok {
			handler(transition)
		}
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("error subscribing to transitions: %w", err)
	}
	return nil
}

// DecodeTransition reports false for events that are not transitions.
func DecodeTransition(msg *sse.Event) (models.Transition, bool, error) {
	var transition models.Transition
	if msg == nil || string(msg.Event) != constants.EventTypeTransition {
		return transition, false, nil
	}
	if err := json.Unmarshal(msg.Data, &transition); err != nil {
		return transition, false, err
	}
	return transition, true, nil
}
