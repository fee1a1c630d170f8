package sse

import (
	"strings"
)

// Format renders a frame, including its trailing blank line. Multi-line data
// is split across several "data:" lines so ParseFrame reconstructs it.
func Format(name, data string) []byte {
	var sb strings.Builder
	if name != "" {
		sb.WriteString("event: ")
		sb.WriteString(name)
		sb.WriteByte('\n')
	}
	for _, line := range strings.Split(data, "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
