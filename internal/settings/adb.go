package settings

import "strconv"

const NamespaceADB = "adb"

// ADBLevels enables logcat priorities by their single-letter tag.
type ADBLevels struct {
	V bool `json:"V"`
	I bool `json:"I"`
	F bool `json:"F"`
	W bool `json:"W"`
	E bool `json:"E"`
	D bool `json:"D"`
	S bool `json:"S"`
}

func (l ADBLevels) enabled() []string {
	var out []string
	for _, level := range []struct {
		tag string
		on  bool
	}{
		{"V", l.V}, {"I", l.I}, {"E", l.E}, {"D", l.D}, {"F", l.F}, {"S", l.S}, {"W", l.W},
	} {
		if level.on {
			out = append(out, level.tag)
		}
	}
	return out
}

// ADBFilter is one logcat filter expression, tag:priority.
type ADBFilter struct {
	Value string `json:"value"`
	Level string `json:"level"`
}

type ADBSettings struct {
	Levels   ADBLevels   `json:"levels"`
	Filters  []ADBFilter `json:"filters"`
	PID      int         `json:"pid"`
	TID      int         `json:"tid"`
	Path     string      `json:"path"`
	Custom   string      `json:"custom"`
	Reset    bool        `json:"reset"`
	DeviceID string      `json:"deviceID"`
}

func DefaultADB() ADBSettings {
	return ADBSettings{
		Levels:  ADBLevels{V: true, I: true, F: true, W: true, E: true, D: true, S: true},
		Filters: []ADBFilter{},
		PID:     -1,
		TID:     -1,
		Reset:   true,
	}
}

// ADBStreamSettings is the settings payload of openLogcatStream and
// setSettingsLogcatStream.
type ADBStreamSettings struct {
	Filters  []ADBFilter `json:"filters"`
	PID      string      `json:"pid,omitempty"`
	TID      string      `json:"tid,omitempty"`
	Path     string      `json:"path"`
	Custom   string      `json:"custom"`
	Reset    bool        `json:"reset"`
	DeviceID string      `json:"deviceID,omitempty"`
}

// Convert builds the backend payload. Priorities become catch-all filters
// unless every priority is enabled; pid and tid are sent only when set.
func (a ADBSettings) Convert() ADBStreamSettings {
	filters := make([]ADBFilter, 0, len(a.Filters)+7)
	filters = append(filters, a.Filters...)
	if levels := a.Levels.enabled(); len(levels) < 7 {
		for _, level := range levels {
			filters = append(filters, ADBFilter{Value: "*", Level: level})
		}
	}
	out := ADBStreamSettings{
		Filters:  filters,
		Path:     a.Path,
		Custom:   a.Custom,
		Reset:    a.Reset,
		DeviceID: a.DeviceID,
	}
	if a.PID > 0 {
		out.PID = strconv.Itoa(a.PID)
	}
	if a.TID > 0 {
		out.TID = strconv.Itoa(a.TID)
	}
	return out
}

func LoadADB(s *Store) ADBSettings {
	value := Load(s, NamespaceADB, DefaultKey, DefaultADB())
	if value.Filters == nil {
		value.Filters = []ADBFilter{}
	}
	return value
}

func SaveADB(s *Store, value ADBSettings) error {
	if value.Filters == nil {
		value.Filters = []ADBFilter{}
	}
	return Save(s, NamespaceADB, DefaultKey, value)
}
