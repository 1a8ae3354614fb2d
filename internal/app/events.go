package app

import (
	"context"
	"encoding/json"
	"errors"

	"logviewer-client/internal/eventbus"
	"logviewer-client/internal/logging"
	"logviewer-client/internal/realtime"
)

// pushTopics maps backend event names onto bus topics.
var pushTopics = map[string]eventbus.Topic{
	string(eventbus.TopicSerialData):     eventbus.TopicSerialData,
	string(eventbus.TopicTelnetData):     eventbus.TopicTelnetData,
	string(eventbus.TopicTerminalData):   eventbus.TopicTerminalData,
	string(eventbus.TopicTerminalClosed): eventbus.TopicTerminalClosed,
	string(eventbus.TopicADBData):        eventbus.TopicADBData,
	string(eventbus.TopicDLTData):        eventbus.TopicDLTData,
	string(eventbus.TopicDLTClosed):      eventbus.TopicDLTClosed,
}

// RunContext keeps the backend event stream open until ctx is done. Push
// events are published on the loop; the first identity event unlocks the
// command channel.
func (a *App) RunContext(ctx context.Context) error {
	a.logger.Info("connecting to backend",
		logging.Field("events_url", a.endpoints.EventsURL),
		logging.Field("guid", a.guid))

	client := realtime.Client{
		HTTP:      a.http,
		EventsURL: a.endpoints.EventsURL,
		GUID:      a.guid,
		Logger:    a.logger,
	}
	err := client.Run(ctx, realtime.Handlers{
		OnIdentity: func(guid string) {
			a.channel.AcceptIdentity(guid)
		},
		OnEvent:  a.forwardEvent,
		OnStatus: a.setStatus,
		OnDisconnect: func(err error) {
			a.logger.Debug("event stream lost", logging.Field("error", err))
			a.Post(func() {
				a.bus.Publish(eventbus.TopicLostConnection, nil)
			})
		},
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) forwardEvent(event realtime.Event) {
	topic, ok := pushTopics[event.Name]
	if !ok {
		a.logger.Debug("ignoring backend event",
			logging.Field("event", event.Name),
			logging.Field("data", logging.FormatPayload(event.Data)))
		return
	}
	payload := json.RawMessage(event.Data)
	a.Post(func() {
		a.bus.Publish(topic, payload)
	})
}
