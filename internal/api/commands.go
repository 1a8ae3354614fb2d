package api

// Command is a backend command name.
type Command string

const (
	CommandSerialPortsList   Command = "serialPortsList"
	CommandOpenSerialPort    Command = "openSerialPort"
	CommandCloseSerialStream Command = "closeSerialStream"
	CommandWriteToSerial     Command = "writeToSerial"

	CommandOpenTelnetStream  Command = "openTelnetStream"
	CommandCloseTelnetStream Command = "closeTelnetStream"
	CommandWriteToTelnet     Command = "writeToTelnet"

	CommandOpenLogcatStream        Command = "openLogcatStream"
	CommandCloseLogcatStream       Command = "closeLogcatStream"
	CommandSetSettingsLogcatStream Command = "setSettingsLogcatStream"
	CommandGetADBDevices           Command = "getAdbDevices"

	CommandConnectToDLTDaemon  Command = "connectToDltDaemon"
	CommandDisconnectDLTDaemon Command = "disconnectDltDaemon"

	CommandOpenProcessStream  Command = "openProcessStream"
	CommandCloseProcessStream Command = "closeProcessStream"
)

var knownCommands = map[Command]struct{}{
	CommandSerialPortsList:         {},
	CommandOpenSerialPort:          {},
	CommandCloseSerialStream:       {},
	CommandWriteToSerial:           {},
	CommandOpenTelnetStream:        {},
	CommandCloseTelnetStream:       {},
	CommandWriteToTelnet:           {},
	CommandOpenLogcatStream:        {},
	CommandCloseLogcatStream:       {},
	CommandSetSettingsLogcatStream: {},
	CommandGetADBDevices:           {},
	CommandConnectToDLTDaemon:      {},
	CommandDisconnectDLTDaemon:     {},
	CommandOpenProcessStream:       {},
	CommandCloseProcessStream:      {},
}

func (c Command) Known() bool {
	_, ok := knownCommands[c]
	return ok
}

func (c Command) String() string {
	return string(c)
}
