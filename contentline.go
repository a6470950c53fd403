package ics

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// contentLine is one unfolded iCalendar content line split into its
// property name, parameters and raw value.
type contentLine struct {
	Name   string
	Params map[string][]string
	Value  string
}

// param returns the first value of the named parameter, or "".
func (cl *contentLine) param(name string) string {
	if vs, ok := cl.Params[name]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// lineScanner reads logical content lines from an iCalendar stream.  Line
// folding per RFC 5545 section 3.1 (CRLF followed by a space or tab) is
// removed, so callers always see whole lines.  The generator never folds,
// but third-party feeds routinely do.
type lineScanner struct {
	b *bufio.Reader
}

func newLineScanner(r io.Reader) *lineScanner {
	return &lineScanner{b: bufio.NewReader(r)}
}

// Next returns the next unfolded line without its terminator.  It returns
// io.EOF once the stream is exhausted.
func (ls *lineScanner) Next() (string, error) {
	var out []byte
	for {
		b, err := ls.b.ReadBytes('\n')
		b = bytes.TrimRight(b, "\r\n")
		out = append(out, b...)
		if err != nil {
			if err == io.EOF && len(out) > 0 {
				return string(out), nil
			}
			return string(out), err
		}
		p, perr := ls.b.Peek(1)
		if perr == nil && (p[0] == ' ' || p[0] == '\t') {
			_, _ = ls.b.Discard(1)
			continue
		}
		return string(out), nil
	}
}

func isNameChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-'
}

// parseContentLine splits "NAME;PARAM=V1,V2:VALUE" into its parts.  The
// property name and parameter names are upper-cased; double-quoted
// parameter values keep reserved characters intact.
func parseContentLine(line string) (*contentLine, error) {
	cl := &contentLine{Params: map[string][]string{}}
	i := 0
	for i < len(line) && isNameChar(line[i]) {
		i++
	}
	if i == 0 {
		return nil, fmt.Errorf("content line has no property name: %q", clip(line))
	}
	cl.Name = strings.ToUpper(line[:i])
	for i < len(line) {
		switch line[i] {
		case ':':
			cl.Value = line[i+1:]
			return cl, nil
		case ';':
			var err error
			i, err = parseLineParam(cl, line, i+1)
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unexpected %q after name in content line %s", line[i], cl.Name)
		}
	}
	return nil, fmt.Errorf("content line %s has no value", cl.Name)
}

// parseLineParam consumes one ";NAME=value[,value...]" group starting at
// i and returns the index of the delimiter that follows it.
func parseLineParam(cl *contentLine, line string, i int) (int, error) {
	start := i
	for i < len(line) && isNameChar(line[i]) {
		i++
	}
	if i == start {
		return 0, fmt.Errorf("empty parameter name in content line %s", cl.Name)
	}
	if i >= len(line) || line[i] != '=' {
		return 0, fmt.Errorf("parameter %s of %s has no value", line[start:i], cl.Name)
	}
	name := strings.ToUpper(line[start:i])
	i++
	for {
		v, ni, err := parseParamValue(line, i)
		if err != nil {
			return 0, fmt.Errorf("parameter %s of %s: %w", name, cl.Name, err)
		}
		cl.Params[name] = append(cl.Params[name], v)
		i = ni
		if i < len(line) && line[i] == ',' {
			i++
			continue
		}
		return i, nil
	}
}

// parseParamValue reads one parameter value starting at i.  A quoted
// value runs to the closing quote; a bare value runs to the next ";",
// ":" or ",".
func parseParamValue(line string, i int) (string, int, error) {
	if i < len(line) && line[i] == '"' {
		end := strings.IndexByte(line[i+1:], '"')
		if end < 0 {
			return "", 0, errors.New("unterminated quoted value")
		}
		return line[i+1 : i+1+end], i + end + 2, nil
	}
	start := i
	for i < len(line) && line[i] != ';' && line[i] != ':' && line[i] != ',' {
		i++
	}
	return line[start:i], i, nil
}

// clip shortens a string for use in a diagnostic message.
func clip(s string) string {
	const max = 40
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
