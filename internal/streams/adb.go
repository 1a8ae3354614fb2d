package streams

import (
	"encoding/json"
	"fmt"
	"strings"

	"logviewer-client/internal/api"
	"logviewer-client/internal/logging"
	"logviewer-client/internal/modal"
	"logviewer-client/internal/settings"
)

// errADBSpawn marks an openLogcatStream failure caused by a missing adb binary.
const errADBSpawn = "ADB_SPAWN_01"

const adbLevelTags = "VIFWEDS"

// ADBDevice is one entry of getAdbDevices. The backend sends either bare
// ids or objects.
type ADBDevice struct {
	ID    string `json:"id"`
	Model string `json:"model"`
}

func decodeADBDevices(resp *api.Response) ([]ADBDevice, error) {
	var ids []string
	if err := json.Unmarshal(resp.Output, &ids); err == nil {
		devices := make([]ADBDevice, 0, len(ids))
		for _, id := range ids {
			devices = append(devices, ADBDevice{ID: id})
		}
		return devices, nil
	}
	var devices []ADBDevice
	if err := json.Unmarshal(resp.Output, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

type ADBOpener struct {
	opener
	// device is the id the current stream was opened with.
	device string
}

func NewADBOpener(deps *Deps) *ADBOpener {
	return &ADBOpener{opener: newOpener(deps, "ADB logcat", "streams.NewADBOpener")}
}

func (o *ADBOpener) Start() {
	o.register(func() {
		o.showSettings(settings.LoadADB(o.deps.Store))
	})
}

func (o *ADBOpener) showSettings(current settings.ADBSettings) {
	o.form("Configuration of ADB logcat stream", adbFields(current), func(values map[string]string) {
		next, err := parseADBForm(current, values)
		if err != nil {
			o.invalid(err, func() { o.showSettings(current) })
			return
		}
		if err := settings.SaveADB(o.deps.Store, next); err != nil {
			o.logger.Warn("failed to save ADB settings", logging.Field("error", err))
		}
		o.openStream(next)
	})
}

// openStream opens logcat right away when a device is pinned. Otherwise it
// asks the backend for devices: one is used directly, several are offered
// for selection.
func (o *ADBOpener) openStream(value settings.ADBSettings) {
	if value.DeviceID != "" {
		o.openDevice(value, value.DeviceID)
		return
	}
	o.request("Please wait... Looking for ADB devices.", api.CommandGetADBDevices, struct{}{}, nil, func(resp *api.Response) {
		devices, err := decodeADBDevices(resp)
		if err != nil {
			o.fail("Error", api.FailureMessage(resp))
			return
		}
		switch len(devices) {
		case 0:
			o.fail("ADB Logcat", "No ADB devices found")
		case 1:
			o.openDevice(value, devices[0].ID)
		default:
			options := make([]modal.Option, 0, len(devices))
			for _, device := range devices {
				label := device.ID
				if device.Model != "" {
					label = fmt.Sprintf("%s (%s)", device.ID, device.Model)
				}
				options = append(options, modal.Option{Value: device.ID, Label: label})
			}
			o.choose("ADB devices", "Several devices are connected. Select one:", options, func(id string) {
				o.openDevice(value, id)
			})
		}
	})
}

func (o *ADBOpener) openDevice(value settings.ADBSettings, deviceID string) {
	value.DeviceID = deviceID
	params := map[string]any{"settings": value.Convert()}
	o.open("Please wait... Opening...", api.CommandOpenLogcatStream, params, o.onOpenFailure, func(stream string) {
		o.device = deviceID
		o.attach(streamConfig{
			kind:        KindADB,
			handle:      stream,
			description: "ADB Logcat",
			closeParams: map[string]any{"stream": stream},
			onSettings:  o.showApplySettings,
		})
	})
}

func (o *ADBOpener) onOpenFailure(resp *api.Response) bool {
	if !strings.Contains(resp.OutputText(), errADBSpawn) {
		return false
	}
	o.deps.Presenter.Open(modal.Dialog{
		Kind:  modal.KindMessage,
		Title: "ADB SDK not found",
		Text: "It looks like LogViewer cannot find the adb SDK. Open the ADB Logcat settings " +
			"and set the path to adb, and make sure the adb SDK is installed on your system.",
		Actions: []modal.Action{
			{Label: "Settings", Run: func() { o.showSettings(settings.LoadADB(o.deps.Store)) }},
			{Label: "Cancel", Run: o.abort},
		},
		OnCancel: o.abort,
	})
	return true
}

// showApplySettings edits the settings of the running stream. It does not
// own the stream slot, so cancelling leaves the controller alone.
func (o *ADBOpener) showApplySettings() {
	current := settings.LoadADB(o.deps.Store)
	o.deps.Presenter.Open(modal.Dialog{
		Kind:   modal.KindForm,
		Title:  "Configuration of ADB logcat stream",
		Fields: adbFields(current),
		OnSubmit: func(values map[string]string) {
			next, err := parseADBForm(current, values)
			if err != nil {
				o.showMessage("Invalid settings", err.Error())
				return
			}
			if err := settings.SaveADB(o.deps.Store, next); err != nil {
				o.logger.Warn("failed to save ADB settings", logging.Field("error", err))
			}
			if next.DeviceID == "" {
				next.DeviceID = o.device
			}
			o.applySettings(next)
		},
	})
}

func (o *ADBOpener) applySettings(value settings.ADBSettings) {
	o.deps.Sender.Send(api.CommandSetSettingsLogcatStream, map[string]any{"settings": value.Convert()}, func(resp *api.Response, err error) {
		switch {
		case err != nil:
			o.showMessage("Error", err.Error())
		case !resp.OK():
			o.showMessage("Error", api.FailureMessage(resp))
		default:
			o.logger.Debug("logcat settings applied")
		}
	})
}

func adbFields(a settings.ADBSettings) []modal.Field {
	filters := make([]string, 0, len(a.Filters))
	for _, f := range a.Filters {
		filters = append(filters, f.Value+":"+f.Level)
	}
	return []modal.Field{
		{Key: "levels", Label: "Levels", Value: adbLevelsString(a.Levels), Help: "any of " + adbLevelTags},
		{Key: "filters", Label: "Filters", Value: strings.Join(filters, ", "), Help: "tag:level, separated by commas"},
		intField("pid", "PID", a.PID),
		intField("tid", "TID", a.TID),
		textField("deviceID", "Device", a.DeviceID),
		textField("path", "Path to adb", a.Path),
		textField("custom", "Custom arguments", a.Custom),
		boolField("reset", "Reset log on open", a.Reset),
	}
}

func adbLevelsString(l settings.ADBLevels) string {
	var b strings.Builder
	for _, level := range []struct {
		tag byte
		on  bool
	}{
		{'V', l.V}, {'I', l.I}, {'F', l.F}, {'W', l.W}, {'E', l.E}, {'D', l.D}, {'S', l.S},
	} {
		if level.on {
			b.WriteByte(level.tag)
		}
	}
	return b.String()
}

func parseADBLevels(value string) (settings.ADBLevels, error) {
	var l settings.ADBLevels
	for _, c := range strings.ToUpper(value) {
		switch c {
		case 'V':
			l.V = true
		case 'I':
			l.I = true
		case 'F':
			l.F = true
		case 'W':
			l.W = true
		case 'E':
			l.E = true
		case 'D':
			l.D = true
		case 'S':
			l.S = true
		case ' ', ',':
		default:
			return l, fmt.Errorf("levels: unknown level %q", c)
		}
	}
	return l, nil
}

func parseADBFilters(value string) ([]settings.ADBFilter, error) {
	out := []settings.ADBFilter{}
	for _, item := range splitList(value, ',') {
		tag, level, ok := strings.Cut(item, ":")
		tag, level = strings.TrimSpace(tag), strings.ToUpper(strings.TrimSpace(level))
		if !ok || tag == "" || len(level) != 1 || !strings.Contains(adbLevelTags, level) {
			return nil, fmt.Errorf("filters: %q is not tag:level", item)
		}
		out = append(out, settings.ADBFilter{Value: tag, Level: level})
	}
	return out, nil
}

func parseADBForm(current settings.ADBSettings, values map[string]string) (settings.ADBSettings, error) {
	r := formReader{values: values}
	if raw, ok := r.lookup("levels"); ok {
		levels, err := parseADBLevels(raw)
		if err != nil {
			r.errs = append(r.errs, err)
		} else {
			current.Levels = levels
		}
	}
	if raw, ok := r.lookup("filters"); ok {
		filters, err := parseADBFilters(raw)
		if err != nil {
			r.errs = append(r.errs, err)
		} else {
			current.Filters = filters
		}
	}
	r.number("pid", &current.PID)
	r.number("tid", &current.TID)
	if raw, ok := r.lookup("deviceID"); ok {
		current.DeviceID = raw
	}
	r.text("path", &current.Path)
	r.text("custom", &current.Custom)
	r.flag("reset", &current.Reset)
	return current, r.err()
}
