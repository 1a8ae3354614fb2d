package streams

import (
	"logviewer-client/internal/api"
	"logviewer-client/internal/logging"
	"logviewer-client/internal/modal"
	"logviewer-client/internal/settings"
)

const (
	telnetNewConnection = "\x00new"
	telnetClearHistory  = "\x00clear"
)

type TelnetOpener struct {
	opener
}

func NewTelnetOpener(deps *Deps) *TelnetOpener {
	return &TelnetOpener{opener: newOpener(deps, "Telnet stream", "streams.NewTelnetOpener")}
}

func (o *TelnetOpener) Start() {
	o.register(o.showHistory)
}

func (o *TelnetOpener) showHistory() {
	aliases := settings.RecentTelnet(o.deps.Store)
	if len(aliases) == 0 {
		o.showSettings(settings.DefaultTelnet())
		return
	}
	options := make([]modal.Option, 0, len(aliases)+2)
	for _, alias := range aliases {
		options = append(options, modal.Option{Value: alias, Label: alias})
	}
	options = append(options,
		modal.Option{Value: telnetNewConnection, Label: "New connection"},
		modal.Option{Value: telnetClearHistory, Label: "Clear history and open new"},
	)
	o.choose("History of telnet connections", "You have saved telnet connections. You can select one from your history:", options, func(choice string) {
		switch choice {
		case telnetNewConnection:
			o.showSettings(settings.DefaultTelnet())
		case telnetClearHistory:
			o.clearHistory()
			o.showSettings(settings.DefaultTelnet())
		default:
			o.showSettings(settings.LoadTelnet(o.deps.Store, choice))
		}
	})
}

func (o *TelnetOpener) clearHistory() {
	for _, namespace := range []string{settings.NamespaceTelnet, settings.NamespaceTelnetAliases} {
		if err := o.deps.Store.Clear(namespace); err != nil {
			o.logger.Warn("failed to clear telnet history", logging.Field("error", err))
		}
	}
}

func (o *TelnetOpener) showSettings(current settings.TelnetSettings) {
	o.form("Configuration of telnet connection", telnetFields(current), func(values map[string]string) {
		next, err := parseTelnetForm(current, values)
		if err != nil {
			o.invalid(err, func() { o.showSettings(current) })
			return
		}
		if err := settings.SaveTelnet(o.deps.Store, next); err != nil {
			o.logger.Warn("failed to save telnet settings", logging.Field("error", err))
		}
		o.openStream(next)
	})
}

func (o *TelnetOpener) openStream(value settings.TelnetSettings) {
	alias := value.Alias()
	params := map[string]any{"alias": alias, "settings": value}
	o.open("Please wait... Opening "+alias, api.CommandOpenTelnetStream, params, nil, func(connection string) {
		o.attach(streamConfig{
			kind:        KindTelnet,
			handle:      connection,
			description: alias,
			closeParams: map[string]any{"connection": connection},
			writeParams: func(text string) any {
				return map[string]any{"connection": connection, "buffer": text}
			},
		})
	})
}

func telnetFields(t settings.TelnetSettings) []modal.Field {
	password := textField("password", "Password", t.Password)
	password.Secret = true
	return []modal.Field{
		textField("host", "Host", t.Host),
		intField("port", "Port", t.Port),
		textField("username", "Username", t.Username),
		password,
		textField("loginPrompt", "Login prompt", t.LoginPrompt),
		textField("passwordPrompt", "Password prompt", t.PasswordPrompt),
		textField("shellPrompt", "Shell prompt", t.ShellPrompt),
		textField("failedLoginMatch", "Failed login match", t.FailedLoginMatch),
		textField("pageSeparator", "Page separator", t.PageSeparator),
		intField("timeout", "Timeout (ms)", t.Timeout),
		intField("execTimeout", "Exec timeout (ms)", t.ExecTimeout),
		intField("sendTimeout", "Send timeout (ms)", t.SendTimeout),
		intField("echoLines", "Echo lines", t.EchoLines),
		boolField("initialLFCR", "Initial LF/CR", t.InitialLFCR),
		boolField("stripShellPrompt", "Strip shell prompt", t.StripShellPrompt),
		boolField("negotiationMandatory", "Negotiation mandatory", t.NegotiationMandatory),
		boolField("debug", "Debug", t.Debug),
	}
}

func parseTelnetForm(current settings.TelnetSettings, values map[string]string) (settings.TelnetSettings, error) {
	r := formReader{values: values}
	r.required("host", &current.Host)
	r.intRange("port", 1, 65535, &current.Port)
	r.text("username", &current.Username)
	r.text("password", &current.Password)
	r.text("loginPrompt", &current.LoginPrompt)
	r.text("passwordPrompt", &current.PasswordPrompt)
	r.text("shellPrompt", &current.ShellPrompt)
	r.text("failedLoginMatch", &current.FailedLoginMatch)
	r.text("pageSeparator", &current.PageSeparator)
	r.number("timeout", &current.Timeout)
	r.number("execTimeout", &current.ExecTimeout)
	r.number("sendTimeout", &current.SendTimeout)
	r.number("echoLines", &current.EchoLines)
	r.flag("initialLFCR", &current.InitialLFCR)
	r.flag("stripShellPrompt", &current.StripShellPrompt)
	r.flag("negotiationMandatory", &current.NegotiationMandatory)
	r.flag("debug", &current.Debug)
	return current, r.err()
}
