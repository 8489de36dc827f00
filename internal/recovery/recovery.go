// Package recovery parses and applies GOD_MODE_SET correction scripts, the
// out-of-band escape hatch for when the patch stream and the real state have
// diverged beyond incremental repair.
package recovery

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	apperrors "github.com/louisbranch/worldkeeper/internal/platform/errors"
)

// Header opens every recovery script.
const Header = "GOD_MODE_SET:"

// deleteLiteral marks a removal on the right-hand side of an assignment.
const deleteLiteral = "__DELETE__"

// Op is one parsed script line.
type Op struct {
	Path string
	// ValueJSON holds the raw JSON literal to set. Empty when Delete is set.
	ValueJSON string
	Delete    bool
}

// ParseScript parses a recovery script into ordered operations. Each line
// after the header is `path.to.value = <json-literal>` or
// `path.to.value = __DELETE__`. Blank lines and `#` comments are skipped.
func ParseScript(script string) ([]Op, error) {
	lines := strings.Split(strings.ReplaceAll(script, "\r\n", "\n"), "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == Header {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, apperrors.New(apperrors.CodeRecoveryMalformedScript,
			fmt.Sprintf("script missing %s header", Header))
	}

	var ops []Op
	for i, line := range lines[start:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		path, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			return nil, malformedLine(start+i+1, trimmed, "missing '='")
		}
		path = strings.TrimSpace(path)
		value = strings.TrimSpace(value)
		if path == "" {
			return nil, malformedLine(start+i+1, trimmed, "empty path")
		}
		if value == deleteLiteral {
			ops = append(ops, Op{Path: path, Delete: true})
			continue
		}
		if !gjson.Valid(value) {
			return nil, malformedLine(start+i+1, trimmed, "value is not a JSON literal")
		}
		ops = append(ops, Op{Path: path, ValueJSON: value})
	}
	if len(ops) == 0 {
		return nil, apperrors.New(apperrors.CodeRecoveryMalformedScript,
			"script contains no operations")
	}
	return ops, nil
}

// ApplyScript applies parsed operations to a snapshot document and returns
// the corrected document. The input is not modified.
func ApplyScript(snapshot []byte, ops []Op) ([]byte, error) {
	doc := append([]byte(nil), snapshot...)
	for _, op := range ops {
		var err error
		if op.Delete {
			doc, err = sjson.DeleteBytes(doc, op.Path)
		} else {
			doc, err = sjson.SetRawBytes(doc, op.Path, []byte(op.ValueJSON))
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeRecoveryMalformedScript,
				fmt.Sprintf("apply operation at path %s", op.Path), err)
		}
	}
	return doc, nil
}

func malformedLine(lineNo int, line, reason string) error {
	return apperrors.WithMetadata(apperrors.CodeRecoveryMalformedScript,
		fmt.Sprintf("line %d: %s", lineNo, reason),
		map[string]string{"line": line})
}
