package streams

import (
	"encoding/json"
	"strings"

	"logviewer-client/internal/api"
	"logviewer-client/internal/eventbus"
)

// Kind describes the backend surface of one stream type.
type Kind struct {
	Name         string
	DataTopic    eventbus.Topic
	ClosedTopic  eventbus.Topic
	CloseCommand api.Command
	WriteCommand api.Command

	// decode extracts the stream handle and text of a data event.
	decode func(raw []byte) (string, string, error)
	// closed extracts the stream handle of a closed event.
	closed func(raw []byte) (string, error)
}

// Writable reports whether text can be sent to streams of this kind.
func (k *Kind) Writable() bool {
	return k.WriteCommand != ""
}

var (
	KindSerial = &Kind{
		Name:         "serial",
		DataTopic:    eventbus.TopicSerialData,
		CloseCommand: api.CommandCloseSerialStream,
		WriteCommand: api.CommandWriteToSerial,
		decode:       decodeConnectionData,
	}
	KindTelnet = &Kind{
		Name:         "telnet",
		DataTopic:    eventbus.TopicTelnetData,
		CloseCommand: api.CommandCloseTelnetStream,
		WriteCommand: api.CommandWriteToTelnet,
		decode:       decodeConnectionData,
	}
	KindTerminal = &Kind{
		Name:         "terminal",
		DataTopic:    eventbus.TopicTerminalData,
		ClosedTopic:  eventbus.TopicTerminalClosed,
		CloseCommand: api.CommandCloseProcessStream,
		decode:       decodeTerminalEntries,
		closed:       decodeStreamKey,
	}
	KindADB = &Kind{
		Name:         "adb",
		DataTopic:    eventbus.TopicADBData,
		CloseCommand: api.CommandCloseLogcatStream,
		decode:       decodeLogcatEntries,
	}
	KindDLT = &Kind{
		Name:         "dlt",
		DataTopic:    eventbus.TopicDLTData,
		ClosedTopic:  eventbus.TopicDLTClosed,
		CloseCommand: api.CommandDisconnectDLTDaemon,
		decode:       decodeAddrData,
		closed:       decodeAddrKey,
	}
)

type connectionData struct {
	Connection string `json:"connection"`
	Data       string `json:"data"`
}

func decodeConnectionData(raw []byte) (string, string, error) {
	var event connectionData
	if err := json.Unmarshal(raw, &event); err != nil {
		return "", "", err
	}
	return event.Connection, event.Data, nil
}

type addrData struct {
	Addr string `json:"addr"`
	Data string `json:"data"`
}

func decodeAddrData(raw []byte) (string, string, error) {
	var event addrData
	if err := json.Unmarshal(raw, &event); err != nil {
		return "", "", err
	}
	return event.Addr, event.Data, nil
}

func decodeAddrKey(raw []byte) (string, error) {
	handle, _, err := decodeAddrData(raw)
	return handle, err
}

type entriesData struct {
	Stream  string `json:"stream"`
	Entries []struct {
		Original string `json:"original"`
	} `json:"entries"`
}

func decodeEntries(raw []byte) (string, []string, error) {
	var event entriesData
	if err := json.Unmarshal(raw, &event); err != nil {
		return "", nil, err
	}
	lines := make([]string, len(event.Entries))
	for i, entry := range event.Entries {
		lines[i] = entry.Original
	}
	return event.Stream, lines, nil
}

func decodeLogcatEntries(raw []byte) (string, string, error) {
	stream, lines, err := decodeEntries(raw)
	if err != nil {
		return "", "", err
	}
	return stream, strings.Join(lines, "\n"), nil
}

// Terminal output always ends with a newline so consecutive events do not
// run together.
func decodeTerminalEntries(raw []byte) (string, string, error) {
	stream, lines, err := decodeEntries(raw)
	if err != nil {
		return "", "", err
	}
	return stream, strings.Join(lines, "\n") + "\n", nil
}

func decodeStreamKey(raw []byte) (string, error) {
	var event struct {
		Stream string `json:"stream"`
	}
	if err := json.Unmarshal(raw, &event); err != nil {
		return "", err
	}
	return event.Stream, nil
}

// payloadBytes accepts the payload shapes the realtime bridge publishes.
func payloadBytes(payload any) ([]byte, bool) {
	switch v := payload.(type) {
	case json.RawMessage:
		return v, true
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
