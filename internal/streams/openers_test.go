package streams

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"logviewer-client/internal/api"
	"logviewer-client/internal/eventbus"
	"logviewer-client/internal/modal"
	"logviewer-client/internal/settings"
	"logviewer-client/internal/toolbar"
)

func TestSerialOpenFlow(t *testing.T) {
	h := newHarness(t)
	o := NewSerialOpener(h.deps)
	o.Start()

	if h.active() != "Serial port" {
		t.Fatalf("Active() = %q, want Serial port", h.active())
	}
	if title := h.top(modal.KindProgress).Title; title != "Please wait... Getting list of available ports." {
		t.Fatalf("progress title = %q", title)
	}
	h.sender.last(t, api.CommandSerialPortsList).reply(t, okReply(`[{"comName":"COM3","manufacturer":"FTDI"},{"comName":"COM4"}]`), nil)

	list := h.top(modal.KindSelect)
	want := []modal.Option{{Value: "COM3", Label: "COM3 (FTDI)"}, {Value: "COM4", Label: "COM4"}}
	if !reflect.DeepEqual(list.Options, want) {
		t.Fatalf("options = %#v, want %#v", list.Options, want)
	}
	h.stack.Select(list.ID, "COM3")

	form := h.top(modal.KindForm)
	if form.Title != "Configuration of connection: COM3" {
		t.Fatalf("form title = %q", form.Title)
	}
	h.stack.Submit(form.ID, map[string]string{"baudRate": "115200", "rtscts": "true"})

	open := h.sender.last(t, api.CommandOpenSerialPort)
	if open.param(t, "port") != "COM3" {
		t.Fatalf("open params = %#v", open.params)
	}
	sent := open.param(t, "settings").(settings.SerialSettings)
	if sent.BaudRate != 115200 || !sent.RTSCTS || sent.DataBits != 8 {
		t.Fatalf("open settings = %#v", sent)
	}
	if stored := settings.LoadSerial(h.deps.Store, "COM3"); stored != sent {
		t.Fatalf("stored settings = %#v, want %#v", stored, sent)
	}

	open.reply(t, okReply(`"conn-1"`), nil)
	h.noDialogs()
	stream, attached := o.Current()
	if !attached || stream.Handle() != "conn-1" || h.description() != "COM3" {
		t.Fatalf("Current() = %v, %v; description = %q", stream, attached, h.description())
	}
	h.publish(eventbus.TopicSerialData, serialChunk("conn-1", "boot\n"))
	if want := []string{"boot\n"}; !reflect.DeepEqual(h.updates, want) {
		t.Fatalf("updates = %v, want %v", h.updates, want)
	}
}

func TestSerialNoPortsAborts(t *testing.T) {
	h := newHarness(t)
	NewSerialOpener(h.deps).Start()
	h.sender.last(t, api.CommandSerialPortsList).reply(t, okReply(`[]`), nil)

	h.top(modal.KindMessage)
	if h.active() != "" {
		t.Fatalf("Active() = %q after abort, want none", h.active())
	}
}

func TestOpenFailureShowsServerMessageAndResets(t *testing.T) {
	h := newHarness(t)
	NewDLTOpener(h.deps).Start()
	form := h.top(modal.KindForm)
	h.stack.Submit(form.ID, map[string]string{"host": "10.0.0.1", "port": "3490", "logLevel": "4"})

	h.sender.last(t, api.CommandConnectToDLTDaemon).reply(t, failed(2, `"connection refused"`), nil)
	msg := h.top(modal.KindMessage)
	want := "Server returned failed result. Code of error: 2. Addition data: connection refused"
	if msg.Text != want {
		t.Fatalf("message = %q, want %q", msg.Text, want)
	}
	if h.active() != "" {
		t.Fatalf("Active() = %q after failure", h.active())
	}
	if len(h.stack.Entries()) != 1 {
		t.Fatalf("progress dialog not closed: %#v", h.stack.Entries())
	}
}

func TestTransportErrorShowsMessageAndResets(t *testing.T) {
	h := newHarness(t)
	NewSerialOpener(h.deps).Start()
	h.sender.last(t, api.CommandSerialPortsList).reply(t, nil, errors.New("dial tcp: refused"))

	if msg := h.top(modal.KindMessage); msg.Title != "Error" || msg.Text != "dial tcp: refused" {
		t.Fatalf("message = %#v", msg)
	}
	if h.active() != "" {
		t.Fatalf("Active() = %q after transport error", h.active())
	}
}

func TestNonStringOpenOutputAborts(t *testing.T) {
	h := newHarness(t)
	NewTerminalOpener(h.deps).Start()
	h.stack.Submit(h.top(modal.KindForm).ID, map[string]string{"path": "/bin/sh", "alias": "shell"})
	h.sender.last(t, api.CommandOpenProcessStream).reply(t, okReply(`{"stream":1}`), nil)

	h.top(modal.KindMessage)
	if h.active() != "" || len(h.deps.Toolbar.Buttons()) != 0 {
		t.Fatalf("stream attached for a non-string handle")
	}
}

func TestCancelResetsController(t *testing.T) {
	tests := []struct {
		name  string
		start func(*Deps)
	}{
		{name: "dlt", start: func(d *Deps) { NewDLTOpener(d).Start() }},
		{name: "terminal", start: func(d *Deps) { NewTerminalOpener(d).Start() }},
		{name: "adb", start: func(d *Deps) { NewADBOpener(d).Start() }},
		{name: "telnet", start: func(d *Deps) { NewTelnetOpener(d).Start() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			tt.start(h.deps)
			if h.active() == "" {
				t.Fatalf("registration not taken")
			}
			h.stack.Cancel(h.top(modal.KindForm).ID)
			if h.active() != "" {
				t.Fatalf("Active() = %q after cancel, want none", h.active())
			}
			if len(h.sender.sent) != 0 {
				t.Fatalf("sent = %v, want nothing", h.sender.commands())
			}
		})
	}
}

func TestInvalidFormShowsFormAgain(t *testing.T) {
	h := newHarness(t)
	NewTerminalOpener(h.deps).Start()
	h.stack.Submit(h.top(modal.KindForm).ID, map[string]string{"path": "/bin/sh", "alias": "  "})

	msg := h.top(modal.KindMessage)
	if !strings.Contains(msg.Text, "alias is required") {
		t.Fatalf("message = %q", msg.Text)
	}
	h.stack.Cancel(msg.ID)
	h.top(modal.KindForm)
	if h.active() != "Terminal stream" {
		t.Fatalf("Active() = %q, want the registration kept", h.active())
	}
}

func TestTerminalOpenFlow(t *testing.T) {
	h := newHarness(t)
	o := NewTerminalOpener(h.deps)
	o.Start()
	h.stack.Submit(h.top(modal.KindForm).ID, map[string]string{
		"path":       "/usr/bin/tail",
		"alias":      "syslog",
		"parameters": "-f  /var/log/syslog",
		"keywords":   "error, warn,,",
	})

	open := h.sender.last(t, api.CommandOpenProcessStream)
	if got := open.param(t, "parameters"); !reflect.DeepEqual(got, []string{"-f", "/var/log/syslog"}) {
		t.Fatalf("parameters = %#v", got)
	}
	if got := open.param(t, "keywords"); !reflect.DeepEqual(got, []string{"error", "warn"}) {
		t.Fatalf("keywords = %#v", got)
	}
	open.reply(t, okReply(`"p-1"`), nil)
	if h.description() != "Terminal stream" {
		t.Fatalf("description = %q", h.description())
	}

	stream, _ := o.Current()
	h.publish(eventbus.TopicTerminalClosed, `{"stream":"p-1"}`)
	if !stream.Destroyed() || h.active() != "" {
		t.Fatalf("terminal closed event did not release the stream")
	}
	if _, attached := o.Current(); attached {
		t.Fatalf("Current() still reports the destroyed stream")
	}
}

func TestDLTOpenFlowSavesOnSuccess(t *testing.T) {
	h := newHarness(t)
	NewDLTOpener(h.deps).Start()
	form := h.top(modal.KindForm)
	h.stack.Submit(form.ID, map[string]string{"host": "10.0.0.1", "port": "3490", "logLevel": "9"})
	if msg := h.top(modal.KindMessage); !strings.Contains(msg.Text, "logLevel") {
		t.Fatalf("message = %q", msg.Text)
	}
	h.stack.Cancel(h.top(modal.KindMessage).ID)
	h.stack.Submit(h.top(modal.KindForm).ID, map[string]string{"host": "10.0.0.1", "port": "3490", "logLevel": "5"})

	connect := h.sender.last(t, api.CommandConnectToDLTDaemon)
	if connect.param(t, "host") != "10.0.0.1" || connect.param(t, "port") != 3490 {
		t.Fatalf("connect params = %#v", connect.params)
	}
	if got := connect.param(t, "settings").(settings.DLTDaemonSettings); got.LogLevel != settings.DLTLevelDebug {
		t.Fatalf("settings = %#v", got)
	}
	if settings.LoadDLT(h.deps.Store) != settings.DefaultDLT() {
		t.Fatalf("settings saved before the daemon answered")
	}
	connect.reply(t, okReply(`"10.0.0.1:3490"`), nil)
	if got := settings.LoadDLT(h.deps.Store); got.Host != "10.0.0.1" || got.Settings.LogLevel != settings.DLTLevelDebug {
		t.Fatalf("stored = %#v", got)
	}
	h.publish(eventbus.TopicDLTData, `{"addr":"10.0.0.1:3490","data":"ECU1 LOG"}`)
	if !reflect.DeepEqual(h.updates, []string{"ECU1 LOG"}) {
		t.Fatalf("updates = %v", h.updates)
	}
}

func TestTelnetHistoryPrefillsForm(t *testing.T) {
	h := newHarness(t)
	saved := settings.DefaultTelnet()
	saved.Host = "192.168.1.20"
	saved.Port = 2323
	saved.Username = "admin"
	if err := settings.SaveTelnet(h.deps.Store, saved); err != nil {
		t.Fatalf("SaveTelnet() error = %v", err)
	}

	o := NewTelnetOpener(h.deps)
	o.Start()
	list := h.top(modal.KindSelect)
	if list.Options[0].Value != "192.168.1.20:2323" || len(list.Options) != 3 {
		t.Fatalf("options = %#v", list.Options)
	}
	h.stack.Select(list.ID, "192.168.1.20:2323")

	form := h.top(modal.KindForm)
	values := map[string]string{}
	for _, f := range form.Fields {
		values[f.Key] = f.Value
		if f.Key == "password" && !f.Secret {
			t.Fatalf("password field is not secret")
		}
	}
	if values["host"] != "192.168.1.20" || values["username"] != "admin" {
		t.Fatalf("form values = %v", values)
	}
	h.stack.Submit(form.ID, values)

	open := h.sender.last(t, api.CommandOpenTelnetStream)
	if open.param(t, "alias") != "192.168.1.20:2323" {
		t.Fatalf("alias = %v", open.param(t, "alias"))
	}
	open.reply(t, okReply(`"t-9"`), nil)
	if h.description() != "192.168.1.20:2323" {
		t.Fatalf("description = %q", h.description())
	}

	stream, _ := o.Current()
	stream.Write("ls\n", nil)
	write := h.sender.last(t, api.CommandWriteToTelnet)
	if write.param(t, "connection") != "t-9" || write.param(t, "buffer") != "ls\n" {
		t.Fatalf("write params = %#v", write.params)
	}
}

func TestTelnetClearHistory(t *testing.T) {
	h := newHarness(t)
	if err := settings.SaveTelnet(h.deps.Store, settings.DefaultTelnet()); err != nil {
		t.Fatalf("SaveTelnet() error = %v", err)
	}
	NewTelnetOpener(h.deps).Start()
	h.stack.Select(h.top(modal.KindSelect).ID, telnetClearHistory)

	h.top(modal.KindForm)
	if got := settings.RecentTelnet(h.deps.Store); len(got) != 0 {
		t.Fatalf("RecentTelnet() = %v, want empty", got)
	}
}

func TestReplacingActiveStreamClosesItFirst(t *testing.T) {
	h := newHarness(t)
	serial := NewSerialOpener(h.deps)
	serial.Start()
	h.sender.last(t, api.CommandSerialPortsList).reply(t, okReply(`[{"comName":"COM3"}]`), nil)
	h.stack.Select(h.top(modal.KindSelect).ID, "COM3")
	h.stack.Submit(h.top(modal.KindForm).ID, nil)
	h.sender.last(t, api.CommandOpenSerialPort).reply(t, okReply(`"conn-1"`), nil)
	first, _ := serial.Current()

	dlt := NewDLTOpener(h.deps)
	dlt.Start()
	confirm := h.top(modal.KindConfirm)
	if h.active() != "Serial port" {
		t.Fatalf("Active() = %q while confirming", h.active())
	}
	h.stack.Confirm(confirm.ID, true)

	closeCmd := h.sender.last(t, api.CommandCloseSerialStream)
	if h.stack.Len() != 0 {
		t.Fatalf("DLT form shown before the serial stream closed")
	}
	closeCmd.reply(t, okReply(`""`), nil)
	if !first.Destroyed() {
		t.Fatalf("serial stream not destroyed")
	}
	if h.active() != "DLT daemon listener" {
		t.Fatalf("Active() = %q, want DLT daemon listener", h.active())
	}
	h.stack.Submit(h.top(modal.KindForm).ID, map[string]string{"host": "10.0.0.5"})
	h.sender.last(t, api.CommandConnectToDLTDaemon).reply(t, okReply(`"10.0.0.5:3490"`), nil)

	live := 0
	for _, o := range []Opener{serial, dlt} {
		if _, attached := o.Current(); attached {
			live++
		}
	}
	if live != 1 || len(h.deps.Toolbar.Buttons()) != 2 {
		t.Fatalf("live streams = %d, buttons = %d; want 1, 2", live, len(h.deps.Toolbar.Buttons()))
	}
}

func TestFailedCloseKeepsActiveStreamAndReports(t *testing.T) {
	h := newHarness(t)
	serial := NewSerialOpener(h.deps)
	serial.Start()
	h.sender.last(t, api.CommandSerialPortsList).reply(t, okReply(`[{"comName":"COM3"}]`), nil)
	h.stack.Select(h.top(modal.KindSelect).ID, "COM3")
	h.stack.Submit(h.top(modal.KindForm).ID, nil)
	h.sender.last(t, api.CommandOpenSerialPort).reply(t, okReply(`"conn-1"`), nil)
	first, _ := serial.Current()

	NewDLTOpener(h.deps).Start()
	h.stack.Confirm(h.top(modal.KindConfirm).ID, true)
	h.sender.last(t, api.CommandCloseSerialStream).reply(t, nil, errors.New("network down"))

	if h.active() != "Serial port" {
		t.Fatalf("Active() = %q, want Serial port", h.active())
	}
	if first.Destroyed() || first.State() != StateWorking {
		t.Fatalf("serial stream destroyed = %v, state = %s; want working", first.Destroyed(), first.State())
	}
	if got := len(h.deps.Toolbar.Buttons()); got != 2 {
		t.Fatalf("buttons = %d, want 2", got)
	}
	msg := h.top(modal.KindMessage)
	if h.stack.Len() != 1 || !strings.Contains(msg.Text, "network down") {
		t.Fatalf("dialogs = %d, message = %q; want one error naming the cause", h.stack.Len(), msg.Text)
	}
	if h.sender.count(api.CommandConnectToDLTDaemon) != 0 {
		t.Fatalf("DLT flow continued after the close failed")
	}
}

func TestDeclinedReplacementKeepsActiveStream(t *testing.T) {
	h := newHarness(t)
	first := h.attachSerial("c-1")
	h.deps.Controller.Register(registrationNamed("Serial port"), nil)

	NewDLTOpener(h.deps).Start()
	h.stack.Confirm(h.top(modal.KindConfirm).ID, false)
	h.noDialogs()
	if first.State() != StateWorking || h.active() != "Serial port" {
		t.Fatalf("declined replacement changed the active stream")
	}
}

func TestADBTwoDevicesSelectBeforeOpening(t *testing.T) {
	h := newHarness(t)
	o := NewADBOpener(h.deps)
	o.Start()
	h.stack.Submit(h.top(modal.KindForm).ID, nil)

	h.sender.last(t, api.CommandGetADBDevices).reply(t, okReply(`[{"id":"emulator-5554","model":"sdk"},{"id":"R58M"}]`), nil)
	if n := h.sender.count(api.CommandOpenLogcatStream); n != 0 {
		t.Fatalf("openLogcatStream sent %d times before selection", n)
	}
	list := h.top(modal.KindSelect)
	if len(list.Options) != 2 || list.Options[0].Label != "emulator-5554 (sdk)" {
		t.Fatalf("options = %#v", list.Options)
	}
	h.stack.Select(list.ID, "R58M")

	open := h.sender.last(t, api.CommandOpenLogcatStream)
	sent := open.param(t, "settings").(settings.ADBStreamSettings)
	if sent.DeviceID != "R58M" {
		t.Fatalf("deviceID = %q, want R58M", sent.DeviceID)
	}
	open.reply(t, okReply(`"s-1"`), nil)

	stream, _ := o.Current()
	if got := len(stream.Buttons()); got != 3 {
		t.Fatalf("ADB buttons = %d, want 3", got)
	}
	if b := h.deps.Toolbar.Buttons()[2]; b.Icon != toolbar.IconSettings {
		t.Fatalf("third button = %#v, want settings", b)
	}
	if h.description() != "ADB Logcat" {
		t.Fatalf("description = %q", h.description())
	}
	h.publish(eventbus.TopicADBData, `{"stream":"s-1","entries":[{"original":"I/x"},{"original":"W/y"}]}`)
	if !reflect.DeepEqual(h.updates, []string{"I/x\nW/y"}) {
		t.Fatalf("updates = %v", h.updates)
	}
}

func TestADBDeviceDiscovery(t *testing.T) {
	t.Run("single device is used directly", func(t *testing.T) {
		h := newHarness(t)
		NewADBOpener(h.deps).Start()
		h.stack.Submit(h.top(modal.KindForm).ID, nil)
		h.sender.last(t, api.CommandGetADBDevices).reply(t, okReply(`["emulator-5554"]`), nil)
		sent := h.sender.last(t, api.CommandOpenLogcatStream).param(t, "settings").(settings.ADBStreamSettings)
		if sent.DeviceID != "emulator-5554" {
			t.Fatalf("deviceID = %q", sent.DeviceID)
		}
	})
	t.Run("no devices aborts", func(t *testing.T) {
		h := newHarness(t)
		NewADBOpener(h.deps).Start()
		h.stack.Submit(h.top(modal.KindForm).ID, nil)
		h.sender.last(t, api.CommandGetADBDevices).reply(t, okReply(`[]`), nil)
		if msg := h.top(modal.KindMessage); msg.Text != "No ADB devices found" {
			t.Fatalf("message = %q", msg.Text)
		}
		if h.active() != "" {
			t.Fatalf("Active() = %q after abort", h.active())
		}
	})
	t.Run("pinned device skips discovery", func(t *testing.T) {
		h := newHarness(t)
		NewADBOpener(h.deps).Start()
		h.stack.Submit(h.top(modal.KindForm).ID, map[string]string{"deviceID": "R58M"})
		if h.sender.count(api.CommandGetADBDevices) != 0 {
			t.Fatalf("getAdbDevices sent for a pinned device")
		}
		h.sender.last(t, api.CommandOpenLogcatStream)
	})
}

func TestADBSpawnErrorOffersSettings(t *testing.T) {
	h := newHarness(t)
	NewADBOpener(h.deps).Start()
	h.stack.Submit(h.top(modal.KindForm).ID, map[string]string{"deviceID": "R58M"})
	h.sender.last(t, api.CommandOpenLogcatStream).reply(t, failed(1, `"spawn adb ENOENT (ADB_SPAWN_01)"`), nil)

	msg := h.top(modal.KindMessage)
	if msg.Title != "ADB SDK not found" || len(msg.Actions) != 2 {
		t.Fatalf("message = %#v", msg)
	}
	if h.active() != "ADB logcat" {
		t.Fatalf("Active() = %q, want registration kept for retry", h.active())
	}
	h.stack.RunAction(msg.ID, 0)
	h.stack.Submit(h.top(modal.KindForm).ID, map[string]string{"path": "/opt/android/platform-tools/adb"})
	open := h.sender.last(t, api.CommandOpenLogcatStream)
	if sent := open.param(t, "settings").(settings.ADBStreamSettings); sent.Path != "/opt/android/platform-tools/adb" {
		t.Fatalf("path = %q", sent.Path)
	}

	open.reply(t, failed(1, `"ADB_SPAWN_01"`), nil)
	h.stack.RunAction(h.top(modal.KindMessage).ID, 1)
	if h.active() != "" {
		t.Fatalf("Active() = %q after cancelling the retry", h.active())
	}
}

func TestADBApplySettingsDoesNotResetController(t *testing.T) {
	h := newHarness(t)
	o := NewADBOpener(h.deps)
	o.Start()
	h.stack.Submit(h.top(modal.KindForm).ID, nil)
	h.sender.last(t, api.CommandGetADBDevices).reply(t, okReply(`["emulator-5554"]`), nil)
	h.sender.last(t, api.CommandOpenLogcatStream).reply(t, okReply(`"s-1"`), nil)
	stream, _ := o.Current()

	settingsButton := stream.Buttons()[2]
	h.deps.Toolbar.Press(settingsButton)
	h.stack.Cancel(h.top(modal.KindForm).ID)
	if h.active() != "ADB logcat" {
		t.Fatalf("Active() = %q after cancelling apply-only settings", h.active())
	}

	h.deps.Toolbar.Press(settingsButton)
	h.stack.Submit(h.top(modal.KindForm).ID, map[string]string{"levels": "EW", "filters": "ActivityManager:I"})
	apply := h.sender.last(t, api.CommandSetSettingsLogcatStream)
	sent := apply.param(t, "settings").(settings.ADBStreamSettings)
	wantFilters := []settings.ADBFilter{
		{Value: "ActivityManager", Level: "I"},
		{Value: "*", Level: "E"},
		{Value: "*", Level: "W"},
	}
	if !reflect.DeepEqual(sent.Filters, wantFilters) || sent.DeviceID != "emulator-5554" {
		t.Fatalf("applied = %#v", sent)
	}
	apply.reply(t, okReply(`""`), nil)
	if stored := settings.LoadADB(h.deps.Store); stored.Levels.V || !stored.Levels.E {
		t.Fatalf("stored levels = %#v", stored.Levels)
	}
	if stream.State() != StateWorking {
		t.Fatalf("State() = %s after applying settings", stream.State())
	}
}

func TestParseADBForm(t *testing.T) {
	_, err := parseADBForm(settings.DefaultADB(), map[string]string{"levels": "VX", "filters": "tag", "pid": "x"})
	if err == nil {
		t.Fatalf("parseADBForm() error = nil")
	}
	for _, want := range []string{"levels", "filters", "pid"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}
