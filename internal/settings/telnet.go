package settings

import (
	"net"
	"strconv"
)

const (
	NamespaceTelnet        = "telnet"
	NamespaceTelnetAliases = "telnet.aliases"

	telnetHistoryKey   = "recent"
	telnetHistoryLimit = 10
)

// TelnetSettings configures one telnet connection. It is stored under its
// alias, host:port.
type TelnetSettings struct {
	Host                 string `json:"host"`
	Port                 int    `json:"port"`
	Timeout              int    `json:"timeout"`
	ShellPrompt          string `json:"shellPrompt"`
	LoginPrompt          string `json:"loginPrompt"`
	PasswordPrompt       string `json:"passwordPrompt"`
	FailedLoginMatch     string `json:"failedLoginMatch"`
	InitialLFCR          bool   `json:"initialLFCR"`
	Username             string `json:"username"`
	Password             string `json:"password"`
	IRS                  string `json:"irs"`
	ORS                  string `json:"ors"`
	EchoLines            int    `json:"echoLines"`
	StripShellPrompt     bool   `json:"stripShellPrompt"`
	PageSeparator        string `json:"pageSeparator"`
	NegotiationMandatory bool   `json:"negotiationMandatory"`
	ExecTimeout          int    `json:"execTimeout"`
	SendTimeout          int    `json:"sendTimeout"`
	MaxBufferLength      int    `json:"maxBufferLength"`
	Debug                bool   `json:"debug"`
}

func DefaultTelnet() TelnetSettings {
	return TelnetSettings{
		Host:                 "127.0.0.1",
		Port:                 23,
		Timeout:              30000,
		Username:             "root",
		Password:             "guest",
		IRS:                  "\r\n",
		ORS:                  "\n",
		EchoLines:            1,
		StripShellPrompt:     true,
		PageSeparator:        "---- More",
		NegotiationMandatory: true,
		ExecTimeout:          2000,
		SendTimeout:          2000,
		MaxBufferLength:      1048576,
	}
}

// Alias is the host:port key the connection is stored under.
func (t TelnetSettings) Alias() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

type TelnetHistory struct {
	Aliases []string `json:"aliases"`
}

func LoadTelnet(s *Store, alias string) TelnetSettings {
	if alias == "" {
		return DefaultTelnet()
	}
	return Load(s, NamespaceTelnet, alias, DefaultTelnet())
}

// SaveTelnet stores value under its alias and moves the alias to the front
// of the recent list.
func SaveTelnet(s *Store, value TelnetSettings) error {
	alias := value.Alias()
	if err := Save(s, NamespaceTelnet, alias, value); err != nil {
		return err
	}
	history := RecentTelnet(s)
	next := []string{alias}
	for _, existing := range history {
		if existing != alias && len(next) < telnetHistoryLimit {
			next = append(next, existing)
		}
	}
	return Save(s, NamespaceTelnetAliases, telnetHistoryKey, TelnetHistory{Aliases: next})
}

// RecentTelnet lists used aliases, most recent first.
func RecentTelnet(s *Store) []string {
	history := Load(s, NamespaceTelnetAliases, telnetHistoryKey, TelnetHistory{Aliases: []string{}})
	return history.Aliases
}
