package llm

import (
	"errors"
	"strings"
)

// ErrMalformedEnvelope is returned when a fenced response does not contain a
// usable payload.
var ErrMalformedEnvelope = errors.New("malformed response envelope")

const fence = "```"

// UnwrapJSON extracts the JSON payload from a model completion.
//
// The accepted shapes are:
//
//	```json ... ```   payload is the text from the first '{' to the last '}'
//	``` ... ```       payload is everything between the first and last line
//	anything else     payload is the whole trimmed response
//
// The payload itself is not validated here.
func UnwrapJSON(content string) (string, error) {
	s := strings.TrimSpace(content)

	switch {
	case strings.HasPrefix(s, fence+"json") && strings.HasSuffix(s, fence):
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start < 0 || end < start {
			return "", ErrMalformedEnvelope
		}
		return s[start : end+1], nil

	case strings.HasPrefix(s, fence) && strings.HasSuffix(s, fence):
		lines := strings.Split(s, "\n")
		if len(lines) < 2 {
			return "", ErrMalformedEnvelope
		}
		return strings.Join(lines[1:len(lines)-1], "\n"), nil

	default:
		return s, nil
	}
}
