package settings

const (
	NamespaceDLT = "dlt"
	DefaultKey   = "default"
)

// DLT log levels, from quietest to noisiest.
const (
	DLTLevelOff = iota
	DLTLevelFatal
	DLTLevelError
	DLTLevelWarn
	DLTLevelInfo
	DLTLevelDebug
	DLTLevelVerbose
)

var dltLevelNames = [...]string{"off", "fatal", "error", "warn", "info", "debug", "verbose"}

// DLTLevelName reports the name of level, or "" when it is out of range.
func DLTLevelName(level int) string {
	if level < DLTLevelOff || level > DLTLevelVerbose {
		return ""
	}
	return dltLevelNames[level]
}

type DLTDaemonSettings struct {
	LogLevel int `json:"logLevel"`
}

type DLTSettings struct {
	Host     string            `json:"host"`
	Port     int               `json:"port"`
	Settings DLTDaemonSettings `json:"settings"`
}

func DefaultDLT() DLTSettings {
	return DLTSettings{
		Port:     3490,
		Settings: DLTDaemonSettings{LogLevel: DLTLevelWarn},
	}
}

func LoadDLT(s *Store) DLTSettings {
	return Load(s, NamespaceDLT, DefaultKey, DefaultDLT())
}

func SaveDLT(s *Store, value DLTSettings) error {
	return Save(s, NamespaceDLT, DefaultKey, value)
}
