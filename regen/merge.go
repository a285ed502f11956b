package regen

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	MarkerMine  = "<<<<<<< mine"
	MarkerSep   = "======="
	MarkerAuto  = ">>>>>>> auto"
	sniffLength = 8000
)

// ErrBinary is returned for content that cannot be merged line by line.
var ErrBinary = errors.New("binary content")

// Merge combines the existing content mine with freshly generated auto.
// Equal lines pass through. A run of lines only in mine is opened with
// MarkerMine and followed by MarkerSep; the lines only in auto that
// replace it come next, and MarkerAuto closes the block. Lines only in
// auto that replace nothing are inserted unmarked. hunks counts the
// changed regions.
func Merge(mine, auto []byte) (merged []byte, hunks int, err error) {
	if err := checkText(mine); err != nil {
		return nil, 0, fmt.Errorf("existing content: %w", err)
	}
	if err := checkText(auto); err != nil {
		return nil, 0, fmt.Errorf("generated content: %w", err)
	}

	a, b := splitLines(mine), splitLines(auto)
	m := difflib.NewMatcherWithJunk(a, b, false, nil)

	var out bytes.Buffer
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e':
			writeLines(&out, a[op.I1:op.I2])
			continue
		case 'i':
			writeLines(&out, b[op.J1:op.J2])
		case 'd', 'r':
			writeLine(&out, MarkerMine)
			writeLines(&out, a[op.I1:op.I2])
			writeLine(&out, MarkerSep)
			writeLines(&out, b[op.J1:op.J2])
			writeLine(&out, MarkerAuto)
		default:
			return nil, 0, fmt.Errorf("unexpected diff opcode %q", op.Tag)
		}
		hunks++
	}
	return out.Bytes(), hunks, nil
}

// UnifiedDiff renders the change from mine to auto with three lines of
// context.
func UnifiedDiff(path string, mine, auto []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(mine),
		B:        splitLines(auto),
		FromFile: path + " (mine)",
		ToFile:   path + " (auto)",
		Context:  3,
	})
}

// checkText rejects content with a NUL byte near the start or invalid
// UTF-8.
func checkText(b []byte) error {
	head := b
	if len(head) > sniffLength {
		head = head[:sniffLength]
	}
	if bytes.IndexByte(head, 0) >= 0 || !utf8.Valid(b) {
		return ErrBinary
	}
	return nil
}

// splitLines keeps line endings so that joining the result reproduces
// the input.
func splitLines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(b), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func writeLines(buf *bytes.Buffer, lines []string) {
	for _, l := range lines {
		buf.WriteString(l)
	}
}

// writeLine writes a marker on its own line.
func writeLine(buf *bytes.Buffer, marker string) {
	if n := buf.Len(); n > 0 && buf.Bytes()[n-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(marker)
	buf.WriteByte('\n')
}
