package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
)

// maxFrameSize bounds one capture line.
const maxFrameSize = 4 << 20

// Frame is one non-empty line of a capture file: a message object or an array
// of them, exactly as received from the websocket.
type Frame struct {
	Line int
	Data []byte
}

// readCapture loads a JSON Lines capture. Blank lines are skipped.
func readCapture(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()

	var frames []Frame
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)
	line := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		frames = append(frames, Frame{Line: line, Data: bytes.Clone(data)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read capture line %d: %w", line+1, err)
	}
	return frames, nil
}
