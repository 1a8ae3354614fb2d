package streams

import (
	"fmt"

	"logviewer-client/internal/api"
	"logviewer-client/internal/logging"
	"logviewer-client/internal/modal"
	"logviewer-client/internal/settings"
)

// SerialPort is one entry of serialPortsList.
type SerialPort struct {
	ComName      string `json:"comName"`
	Manufacturer string `json:"manufacturer"`
}

type SerialOpener struct {
	opener
}

func NewSerialOpener(deps *Deps) *SerialOpener {
	return &SerialOpener{opener: newOpener(deps, "Serial port", "streams.NewSerialOpener")}
}

func (o *SerialOpener) Start() {
	o.register(o.listPorts)
}

func (o *SerialOpener) listPorts() {
	o.request("Please wait... Getting list of available ports.", api.CommandSerialPortsList, struct{}{}, nil, func(resp *api.Response) {
		var ports []SerialPort
		if err := resp.DecodeOutput(&ports); err != nil {
			o.fail("Error", api.FailureMessage(resp))
			return
		}
		if len(ports) == 0 {
			o.fail("Serial ports", "No serial ports were found.")
			return
		}
		options := make([]modal.Option, 0, len(ports))
		for _, port := range ports {
			label := port.ComName
			if port.Manufacturer != "" {
				label = fmt.Sprintf("%s (%s)", port.ComName, port.Manufacturer)
			}
			options = append(options, modal.Option{Value: port.ComName, Label: label})
		}
		o.choose("Available ports", "", options, func(port string) {
			o.showSettings(port, settings.LoadSerial(o.deps.Store, port))
		})
	})
}

func (o *SerialOpener) showSettings(port string, current settings.SerialSettings) {
	o.form("Configuration of connection: "+port, serialFields(current), func(values map[string]string) {
		next, err := parseSerialForm(current, values)
		if err != nil {
			o.invalid(err, func() { o.showSettings(port, current) })
			return
		}
		if err := settings.SaveSerial(o.deps.Store, port, next); err != nil {
			o.logger.Warn("failed to save serial settings", logging.Field("port", port), logging.Field("error", err))
		}
		o.openPort(port, next)
	})
}

func (o *SerialOpener) openPort(port string, value settings.SerialSettings) {
	params := map[string]any{"port": port, "settings": value}
	o.open("Please wait... Opening "+port, api.CommandOpenSerialPort, params, nil, func(connection string) {
		o.attach(streamConfig{
			kind:        KindSerial,
			handle:      connection,
			description: port,
			closeParams: map[string]any{"port": port, "connection": connection},
			writeParams: func(text string) any {
				return map[string]any{"port": port, "connection": connection, "buffer": text}
			},
		})
	})
}

func serialFields(s settings.SerialSettings) []modal.Field {
	return []modal.Field{
		intField("baudRate", "Baud rate", s.BaudRate),
		intField("dataBits", "Data bits", s.DataBits),
		intField("stopBits", "Stop bits", s.StopBits),
		boolField("rtscts", "RTS/CTS", s.RTSCTS),
		boolField("xon", "XON", s.XOn),
		boolField("xoff", "XOFF", s.XOff),
		boolField("xany", "XANY", s.XAny),
		intField("bufferSize", "Buffer size", s.BufferSize),
		intField("vmin", "VMIN", s.VMin),
		intField("vtime", "VTIME", s.VTime),
		intField("vtransmit", "VTRANSMIT", s.VTransmit),
	}
}

func parseSerialForm(current settings.SerialSettings, values map[string]string) (settings.SerialSettings, error) {
	r := formReader{values: values}
	r.number("baudRate", &current.BaudRate)
	r.intRange("dataBits", 5, 8, &current.DataBits)
	r.intRange("stopBits", 1, 2, &current.StopBits)
	r.flag("rtscts", &current.RTSCTS)
	r.flag("xon", &current.XOn)
	r.flag("xoff", &current.XOff)
	r.flag("xany", &current.XAny)
	r.number("bufferSize", &current.BufferSize)
	r.number("vmin", &current.VMin)
	r.number("vtime", &current.VTime)
	r.number("vtransmit", &current.VTransmit)
	return current, r.err()
}
