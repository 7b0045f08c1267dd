// Package linecodec turns snapshot entries into the text buffer handed to
// the editor and decodes the edited buffer back into numbered lines.
//
// A line is "<id> <path>", directories carry a trailing separator. Blank
// lines are ignored. Anything else that does not start with a number aborts
// the whole decode.
package linecodec

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/arthur-debert/rendir/pkg/errors"
	"github.com/arthur-debert/rendir/pkg/types"
)

// Class tells what kind of line DecodeLine saw
type Class int

const (
	Blank Class = iota
	Entry
	Malformed
)

func (c Class) String() string {
	switch c {
	case Blank:
		return "blank"
	case Entry:
		return "entry"
	default:
		return "malformed"
	}
}

const dirMarker = string(filepath.Separator)

// Encode renders one entry as a buffer line, without the newline
func Encode(e types.Entry) string {
	path := e.Path
	if e.IsDir() && !strings.HasSuffix(path, dirMarker) {
		path += dirMarker
	}
	return strconv.Itoa(e.ID) + " " + path
}

// EncodeAll renders the whole buffer, one newline-terminated line per entry
func EncodeAll(entries []types.Entry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(Encode(e))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// DecodeLine parses one line of the edited buffer. line is the 1-based line
// number used in error messages.
func DecodeLine(text string, line int) (types.EditedLine, Class, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return types.EditedLine{}, Blank, nil
	}

	token, rest := splitToken(trimmed)

	id, err := strconv.Atoi(token)
	if err != nil || id < 0 || strings.HasPrefix(token, "+") || strings.HasPrefix(token, "-") {
		return types.EditedLine{}, Malformed, errors.Newf(errors.ErrParse, "invalid index %q at line %d", token, line).
			WithDetail(errors.DetailLine, line)
	}

	path := strings.TrimSpace(rest)
	if path == "" {
		return types.EditedLine{}, Malformed, errors.Newf(errors.ErrParse, "missing path for index %d at line %d", id, line).
			WithDetails(map[string]interface{}{
				errors.DetailLine:  line,
				errors.DetailIndex: id,
			})
	}

	return types.EditedLine{ID: id, Path: path, Line: line}, Entry, nil
}

// Decode parses the whole edited buffer. The first malformed line aborts.
func Decode(buffer []byte) ([]types.EditedLine, error) {
	var out []types.EditedLine
	for i, raw := range strings.Split(string(buffer), "\n") {
		raw = strings.TrimSuffix(raw, "\r")
		edited, class, err := DecodeLine(raw, i+1)
		if err != nil {
			return nil, err
		}
		if class == Entry {
			out = append(out, edited)
		}
	}
	return out, nil
}

// splitToken cuts s at its first run of whitespace
func splitToken(s string) (string, string) {
	idx := strings.IndexFunc(s, unicode.IsSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx:]
}

// Describe renders an edited line the way it would appear in the buffer,
// used in diagnostics
func Describe(l types.EditedLine) string {
	return fmt.Sprintf("%d %s", l.ID, l.Path)
}
