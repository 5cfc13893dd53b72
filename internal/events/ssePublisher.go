package events

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	sse "github.com/r3labs/sse/v2"
	"github.com/wheelibin/daysched/internal/constants"
	"github.com/wheelibin/daysched/internal/models"
)

// SSEPublisher broadcasts schedule transitions to server-sent event subscribers.
type SSEPublisher struct {
	logger *log.Logger
	server *sse.Server
}

func NewSSEPublisher(logger *log.Logger) *SSEPublisher {
	server := sse.New()
	// subscribers only get transitions from the moment they connect
	server.AutoReplay = false
	server.CreateStream(constants.TransitionStream)
	return &SSEPublisher{logger: logger, server: server}
}

func (p *SSEPublisher) Publish(transition models.Transition) {
	data, err := json.Marshal(transition)
	if err != nil {
		p.logger.Error("Error encoding transition", "schedule", transition.Schedule, "err", err)
		return
	}
	p.server.Publish(constants.TransitionStream, &sse.Event{
		Event: []byte(constants.EventTypeTransition),
		Data:  data,
	})
}

func (p *SSEPublisher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("stream") == "" {
		r = r.Clone(r.Context())
		q := r.URL.Query()
		q.Set("stream", constants.TransitionStream)
		r.URL.RawQuery = q.Encode()
	}
	p.server.ServeHTTP(w, r)
}

func (p *SSEPublisher) Close() {
	p.logger.Debug("Closing event stream")
	p.server.Close()
}
