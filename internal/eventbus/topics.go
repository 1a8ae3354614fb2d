package eventbus

// Topic names one channel on the bus.
type Topic string

// Backend push events. Payloads are the raw JSON event body (json.RawMessage).
const (
	TopicSerialData     Topic = "serial.data"
	TopicTelnetData     Topic = "telnet.data"
	TopicTerminalData   Topic = "terminal.data"
	TopicTerminalClosed Topic = "terminal.closed"
	TopicADBData        Topic = "adb.data"
	TopicDLTData        Topic = "dlt.data"
	TopicDLTClosed      Topic = "dlt.closed"
)

const (
	// TopicLostConnection fires when the backend event stream ends. No payload.
	TopicLostConnection Topic = "connection.lost"
	// TopicConnectionStatus carries a runstatus string.
	TopicConnectionStatus Topic = "connection.status"

	// TopicStreamDescription carries the description of the active stream.
	TopicStreamDescription Topic = "stream.description"
	// TopicStreamData carries a text chunk to append to the shared data view.
	TopicStreamData Topic = "stream.data"
	// TopicTextReplaced carries the text that replaces the shared data view.
	// Active streams stop when another source replaces the view.
	TopicTextReplaced Topic = "view.text-replaced"

	TopicToolbarAdded   Topic = "toolbar.added"
	TopicToolbarRemoved Topic = "toolbar.removed"
	TopicToolbarUpdated Topic = "toolbar.updated"
)
