package diagnostics

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const pathSeparator = " -> "

// Message is a rendered diagnostic. Its identity is the hash of Text, so two
// causes that render the same text are the same message.
type Message struct {
	Kind     Kind
	Severity Severity
	Text     string
	Hash     string
	Count    int
}

// New renders the template of kind with args and the path suffix.
func New(kind Kind, path []string, args ...any) *Message {
	e, ok := registry[kind]
	if !ok {
		e = entry{name: "Unknown", severity: SevError, template: "Unknown diagnostic."}
	}

	text := substitute(e.template, args)
	if len(path) > 0 {
		text += " Path: " + strings.Join(path, pathSeparator)
	}

	sum := sha256.Sum256([]byte(text))
	return &Message{
		Kind:     kind,
		Severity: e.severity,
		Text:     text,
		Hash:     hex.EncodeToString(sum[:]),
		Count:    1,
	}
}

func substitute(template string, args []any) string {
	if len(args) == 0 {
		return template
	}
	pairs := make([]string, 0, len(args)*2)
	for i, arg := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", formatArg(arg))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func formatArg(arg any) string {
	switch v := arg.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case error:
		return v.Error()
	case int:
		return strconv.Itoa(v)
	case fmt.Stringer:
		return v.String()
	}
	b, err := json.Marshal(arg)
	if err != nil {
		return fmt.Sprintf("%v", arg)
	}
	return string(b)
}
