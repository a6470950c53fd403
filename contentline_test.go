package ics

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *contentLine
	}{
		{
			name:  "bare property",
			input: "SUMMARY:Team sync",
			want:  &contentLine{Name: "SUMMARY", Params: map[string][]string{}, Value: "Team sync"},
		},
		{
			name:  "lower case name is upper cased",
			input: "summary:hello",
			want:  &contentLine{Name: "SUMMARY", Params: map[string][]string{}, Value: "hello"},
		},
		{
			name:  "single parameter",
			input: "DTSTART;VALUE=DATE:20240601",
			want: &contentLine{
				Name:   "DTSTART",
				Params: map[string][]string{"VALUE": {"DATE"}},
				Value:  "20240601",
			},
		},
		{
			name:  "several parameters",
			input: "ATTENDEE;RSVP=TRUE;ROLE=REQ-PARTICIPANT;PARTSTAT=ACCEPTED:mailto:a@example.com",
			want: &contentLine{
				Name: "ATTENDEE",
				Params: map[string][]string{
					"RSVP":     {"TRUE"},
					"ROLE":     {"REQ-PARTICIPANT"},
					"PARTSTAT": {"ACCEPTED"},
				},
				Value: "mailto:a@example.com",
			},
		},
		{
			name:  "quoted parameter keeps reserved characters",
			input: `ORGANIZER;CN="Smith; Bob":mailto:bob@example.com`,
			want: &contentLine{
				Name:   "ORGANIZER",
				Params: map[string][]string{"CN": {"Smith; Bob"}},
				Value:  "mailto:bob@example.com",
			},
		},
		{
			name:  "multi-valued parameter",
			input: "ATTENDEE;MEMBER=a@example.com,b@example.com:mailto:c@example.com",
			want: &contentLine{
				Name:   "ATTENDEE",
				Params: map[string][]string{"MEMBER": {"a@example.com", "b@example.com"}},
				Value:  "mailto:c@example.com",
			},
		},
		{
			name:  "empty value",
			input: "COMMENT:",
			want:  &contentLine{Name: "COMMENT", Params: map[string][]string{}, Value: ""},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseContentLine(tc.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(contentLine{})); diff != "" {
				t.Errorf("parseContentLine() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseContentLineErrors(t *testing.T) {
	bad := []string{
		":no name",
		"SUMMARY",             // no value delimiter
		"SUMMARY;:x",          // empty parameter name
		"SUMMARY;LANG:x",      // parameter without =
		`SUMMARY;CN="open:x`,  // unterminated quote
		"SUM MARY:x",          // space in name position
	}
	for _, line := range bad {
		_, err := parseContentLine(line)
		assert.Error(t, err, "parseContentLine(%q)", line)
	}
}

func TestLineScannerUnfolding(t *testing.T) {
	input := "BEGIN:VEVENT\r\n" +
		"SUMMARY:A summary that was fol\r\n ded across three\r\n\tphysical lines\r\n" +
		"END:VEVENT\r\n"
	ls := newLineScanner(strings.NewReader(input))

	line, err := ls.Next()
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VEVENT", line)

	line, err = ls.Next()
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY:A summary that was folded across threephysical lines", line)

	line, err = ls.Next()
	require.NoError(t, err)
	assert.Equal(t, "END:VEVENT", line)

	_, err = ls.Next()
	assert.Equal(t, io.EOF, err)
}

func TestLineScannerBareNewlines(t *testing.T) {
	// feeds that use bare \n instead of \r\n still scan line by line
	ls := newLineScanner(strings.NewReader("A:1\nB:2\nC:3"))
	for _, want := range []string{"A:1", "B:2", "C:3"} {
		line, err := ls.Next()
		require.NoError(t, err)
		assert.Equal(t, want, line)
	}
	_, err := ls.Next()
	assert.Equal(t, io.EOF, err)
}
