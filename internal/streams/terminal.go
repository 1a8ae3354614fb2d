package streams

import (
	"strings"

	"logviewer-client/internal/api"
	"logviewer-client/internal/logging"
	"logviewer-client/internal/modal"
	"logviewer-client/internal/settings"
)

type TerminalOpener struct {
	opener
}

func NewTerminalOpener(deps *Deps) *TerminalOpener {
	return &TerminalOpener{opener: newOpener(deps, "Terminal stream", "streams.NewTerminalOpener")}
}

func (o *TerminalOpener) Start() {
	o.register(func() {
		o.showSettings(settings.LoadTerminal(o.deps.Store))
	})
}

func (o *TerminalOpener) showSettings(current settings.TerminalSettings) {
	o.form("Opening terminal stream", terminalFields(current), func(values map[string]string) {
		next, err := parseTerminalForm(current, values)
		if err != nil {
			o.invalid(err, func() { o.showSettings(current) })
			return
		}
		if err := settings.SaveTerminal(o.deps.Store, next); err != nil {
			o.logger.Warn("failed to save terminal settings", logging.Field("error", err))
		}
		o.openStream(next)
	})
}

func (o *TerminalOpener) openStream(value settings.TerminalSettings) {
	params := map[string]any{
		"path":       value.Path,
		"alias":      value.Alias,
		"parameters": value.Parameters,
		"keywords":   value.Keywords,
	}
	o.open("Please wait... Opening...", api.CommandOpenProcessStream, params, nil, func(stream string) {
		o.attach(streamConfig{
			kind:        KindTerminal,
			handle:      stream,
			description: "Terminal stream",
			closeParams: map[string]any{"stream": stream},
		})
	})
}

func terminalFields(t settings.TerminalSettings) []modal.Field {
	return []modal.Field{
		textField("path", "Path", t.Path),
		textField("alias", "Alias", t.Alias),
		{Key: "parameters", Label: "Parameters", Value: strings.Join(t.Parameters, " "), Help: "separated by spaces"},
		{Key: "keywords", Label: "Keywords", Value: strings.Join(t.Keywords, ", "), Help: "separated by commas"},
	}
}

func parseTerminalForm(current settings.TerminalSettings, values map[string]string) (settings.TerminalSettings, error) {
	r := formReader{values: values}
	r.text("path", &current.Path)
	r.required("alias", &current.Alias)
	r.list("parameters", 0, &current.Parameters)
	r.list("keywords", ',', &current.Keywords)
	current.Path = strings.TrimSpace(current.Path)
	return current, r.err()
}
