package settings

const NamespaceSerial = "serial"

// SerialSettings configures one serial port. It is stored under the port name.
type SerialSettings struct {
	BaudRate   int  `json:"baudRate"`
	DataBits   int  `json:"dataBits"`
	StopBits   int  `json:"stopBits"`
	RTSCTS     bool `json:"rtscts"`
	XOn        bool `json:"xon"`
	XOff       bool `json:"xoff"`
	XAny       bool `json:"xany"`
	BufferSize int  `json:"bufferSize"`
	VMin       int  `json:"vmin"`
	VTime      int  `json:"vtime"`
	VTransmit  int  `json:"vtransmit"`
}

func DefaultSerial() SerialSettings {
	return SerialSettings{
		BaudRate:   921600,
		DataBits:   8,
		StopBits:   1,
		BufferSize: 65536,
		VMin:       1,
		VTime:      0,
		VTransmit:  50,
	}
}

func LoadSerial(s *Store, port string) SerialSettings {
	return Load(s, NamespaceSerial, port, DefaultSerial())
}

func SaveSerial(s *Store, port string, value SerialSettings) error {
	return Save(s, NamespaceSerial, port, value)
}
