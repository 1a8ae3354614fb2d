package settings

const NamespaceTerminal = "terminal"

type TerminalSettings struct {
	Path       string   `json:"path"`
	Alias      string   `json:"alias"`
	Parameters []string `json:"parameters"`
	Keywords   []string `json:"keywords"`
}

func DefaultTerminal() TerminalSettings {
	return TerminalSettings{
		Parameters: []string{},
		Keywords:   []string{},
	}
}

func LoadTerminal(s *Store) TerminalSettings {
	value := Load(s, NamespaceTerminal, DefaultKey, DefaultTerminal())
	if value.Parameters == nil {
		value.Parameters = []string{}
	}
	if value.Keywords == nil {
		value.Keywords = []string{}
	}
	return value
}

func SaveTerminal(s *Store, value TerminalSettings) error {
	if value.Parameters == nil {
		value.Parameters = []string{}
	}
	if value.Keywords == nil {
		value.Keywords = []string{}
	}
	return Save(s, NamespaceTerminal, DefaultKey, value)
}
