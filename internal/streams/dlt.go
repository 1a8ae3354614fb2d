package streams

import (
	"fmt"
	"strings"

	"logviewer-client/internal/api"
	"logviewer-client/internal/logging"
	"logviewer-client/internal/modal"
	"logviewer-client/internal/settings"
)

type DLTOpener struct {
	opener
}

func NewDLTOpener(deps *Deps) *DLTOpener {
	return &DLTOpener{opener: newOpener(deps, "DLT daemon listener", "streams.NewDLTOpener")}
}

func (o *DLTOpener) Start() {
	o.register(func() {
		o.showSettings(settings.LoadDLT(o.deps.Store))
	})
}

func (o *DLTOpener) showSettings(current settings.DLTSettings) {
	o.form("Connection to DLT daemon", dltFields(current), func(values map[string]string) {
		next, err := parseDLTForm(current, values)
		if err != nil {
			o.invalid(err, func() { o.showSettings(current) })
			return
		}
		o.openStream(next)
	})
}

func (o *DLTOpener) openStream(value settings.DLTSettings) {
	params := map[string]any{"host": value.Host, "port": value.Port, "settings": value.Settings}
	o.open("Please wait... Opening...", api.CommandConnectToDLTDaemon, params, nil, func(addr string) {
		if err := settings.SaveDLT(o.deps.Store, value); err != nil {
			o.logger.Warn("failed to save DLT settings", logging.Field("error", err))
		}
		o.attach(streamConfig{
			kind:        KindDLT,
			handle:      addr,
			description: "DLT stream",
			closeParams: map[string]any{"addr": addr},
		})
	})
}

func dltFields(d settings.DLTSettings) []modal.Field {
	names := make([]string, 0, settings.DLTLevelVerbose+1)
	for level := settings.DLTLevelOff; level <= settings.DLTLevelVerbose; level++ {
		names = append(names, fmt.Sprintf("%d %s", level, settings.DLTLevelName(level)))
	}
	return []modal.Field{
		textField("host", "Host", d.Host),
		intField("port", "Port", d.Port),
		{Key: "logLevel", Label: "Log level", Value: fmt.Sprint(d.Settings.LogLevel), Help: strings.Join(names, ", ")},
	}
}

func parseDLTForm(current settings.DLTSettings, values map[string]string) (settings.DLTSettings, error) {
	r := formReader{values: values}
	r.required("host", &current.Host)
	r.intRange("port", 1, 65535, &current.Port)
	r.intRange("logLevel", settings.DLTLevelOff, settings.DLTLevelVerbose, &current.Settings.LogLevel)
	return current, r.err()
}
