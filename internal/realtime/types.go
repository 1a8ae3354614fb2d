package realtime

// EventIdentity is the first event of every session. Its data carries the
// GUID the backend bound the stream to.
const EventIdentity = "identity"

// Event is one Server-Sent Event. Data lines are joined with '\n'.
type Event struct {
	Name string
	Data []byte
}

type identityPayload struct {
	GUID string `json:"GUID"`
}
