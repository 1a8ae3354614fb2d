package realtime

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

const maxEventSize = 4 * 1024 * 1024

// readEvents parses an SSE body into out and reports io.EOF, or the scan
// error, on errs once the body ends. out is closed first.
func readEvents(reader io.Reader, out chan<- Event, errs chan<- error) {
	defer close(out)

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	name := ""
	var data bytes.Buffer
	emit := func() {
		if name == "" && data.Len() == 0 {
			return
		}
		out <- Event{Name: name, Data: bytes.Clone(data.Bytes())}
		name = ""
		data.Reset()
	}

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		switch {
		case line == "":
			emit()
		case strings.HasPrefix(line, ":"):
			// comment / keep-alive
		default:
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "event":
				name = strings.TrimSpace(value)
			case "data":
				if data.Len() > 0 {
					data.WriteByte('\n')
				}
				data.WriteString(value)
			}
		}
	}

	emit()
	if err := scanner.Err(); err != nil {
		errs <- err
		return
	}
	errs <- io.EOF
}
