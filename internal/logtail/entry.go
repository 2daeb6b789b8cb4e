package logtail

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Level is a logrus level; lower values are more severe.
type Level = logrus.Level

// Entry is one parsed line of logrus text output.
type Entry struct {
	Time      time.Time
	Level     Level
	Component string
	Message   string
	Fields    map[string]string
	Raw       string
}

// Field returns the value of a structured field.
func (e Entry) Field(key string) string {
	return e.Fields[key]
}

// FieldKeys returns the structured field names in a stable order.
func (e Entry) FieldKeys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Parse decodes a line written by logrus' TextFormatter with colors off:
//
//	time="2024-03-14T15:09:26Z" level=info msg="job paid" component=jobs estimate_id=e1
//
// Lines that do not look like that come back as an info entry carrying the
// whole line as the message.
func Parse(line string) Entry {
	entry := Entry{Level: logrus.InfoLevel, Raw: line}
	pairs, ok := splitPairs(line)
	if !ok {
		entry.Message = strings.TrimSpace(line)
		return entry
	}

	for _, kv := range pairs {
		switch kv[0] {
		case "time":
			if ts, err := time.Parse(time.RFC3339, kv[1]); err == nil {
				entry.Time = ts
			}
		case "level":
			if lvl, err := logrus.ParseLevel(kv[1]); err == nil {
				entry.Level = lvl
			}
		case "msg":
			entry.Message = kv[1]
		case "component":
			entry.Component = kv[1]
		default:
			if entry.Fields == nil {
				entry.Fields = make(map[string]string)
			}
			entry.Fields[kv[0]] = kv[1]
		}
	}
	return entry
}

// ParseLines parses each non-blank line.
func ParseLines(lines []string) []Entry {
	out := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, Parse(line))
	}
	return out
}

// Filter keeps entries at or above min severity.
func Filter(entries []Entry, min Level) []Entry {
	out := entries[:0:0]
	for _, e := range entries {
		if e.Level <= min {
			out = append(out, e)
		}
	}
	return out
}

func splitPairs(line string) ([][2]string, bool) {
	var pairs [][2]string
	rest := strings.TrimSpace(line)
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 || strings.ContainsAny(rest[:eq], " \"") {
			return nil, false
		}
		key := rest[:eq]
		rest = rest[eq+1:]

		var value string
		if strings.HasPrefix(rest, `"`) {
			end := closingQuote(rest)
			if end < 0 {
				return nil, false
			}
			unquoted, err := strconv.Unquote(rest[:end+1])
			if err != nil {
				return nil, false
			}
			value = unquoted
			rest = rest[end+1:]
		} else {
			sp := strings.IndexByte(rest, ' ')
			if sp < 0 {
				sp = len(rest)
			}
			value = rest[:sp]
			rest = rest[sp:]
		}
		pairs = append(pairs, [2]string{key, value})
		rest = strings.TrimLeft(rest, " ")
	}
	return pairs, len(pairs) > 0
}

func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
