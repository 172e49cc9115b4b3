package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	lerrors "github.com/ryotapoi/mdlinkify/internal/errors"
)

// Position is a zero-based line and character column.
type Position struct {
	Line   int
	Column int
}

// Change is one edit of a batch, addressed both by byte offsets and by
// position in the buffer's pre-edit snapshot.
type Change struct {
	Start int
	End   int
	From  Position
	To    Position
	Text  string
}

// Buffer is a live editable document.
// ApplyEdits must apply all changes against the current snapshot or none.
type Buffer interface {
	Text() string
	OffsetToPosition(offset int) Position
	ApplyEdits(changes []Change) error
}

// Rewrite applies plan to buf in one batch. The plan must have been computed
// against buf's current text.
func Rewrite(buf Buffer, plan []Edit) error {
	if len(plan) == 0 {
		return nil
	}
	snapshot := buf.Text()
	if err := validatePlan(plan, len(snapshot)); err != nil {
		return err
	}
	changes := make([]Change, len(plan))
	for i, e := range plan {
		changes[i] = Change{
			Start: e.Start,
			End:   e.End,
			From:  buf.OffsetToPosition(e.Start),
			To:    buf.OffsetToPosition(e.End),
			Text:  e.Replacement,
		}
	}
	return buf.ApplyEdits(changes)
}

// RewriteText returns text with plan applied.
func RewriteText(text string, plan []Edit) (string, error) {
	if err := validatePlan(plan, len(text)); err != nil {
		return "", err
	}
	changes := make([]Change, len(plan))
	for i, e := range plan {
		changes[i] = Change{Start: e.Start, End: e.End, Text: e.Replacement}
	}
	return applyChanges(text, changes), nil
}

func validatePlan(plan []Edit, size int) error {
	prevEnd := 0
	for i, e := range plan {
		if e.Start < 0 || e.End < e.Start || e.End > size {
			return lerrors.InvalidPlan(fmt.Sprintf("edit %d out of range [%d,%d)", i, e.Start, e.End))
		}
		if e.Start < prevEnd {
			return lerrors.InvalidPlan(fmt.Sprintf("edit %d overlaps previous edit", i))
		}
		prevEnd = e.End
	}
	return nil
}

// applyChanges splices changes into text. Changes are ascending and disjoint,
// with offsets into text itself.
func applyChanges(text string, changes []Change) string {
	var b strings.Builder
	b.Grow(len(text) + len(changes)*4)
	pos := 0
	for _, c := range changes {
		b.WriteString(text[pos:c.Start])
		b.WriteString(c.Text)
		pos = c.End
	}
	b.WriteString(text[pos:])
	return b.String()
}

func validateChanges(changes []Change, size int) error {
	prevEnd := 0
	for i, c := range changes {
		if c.Start < prevEnd || c.End < c.Start || c.End > size {
			return lerrors.InvalidPlan(fmt.Sprintf("change %d does not fit the snapshot", i))
		}
		prevEnd = c.End
	}
	return nil
}

// offsetToPosition converts a byte offset into a line and rune column.
func offsetToPosition(text string, offset int) Position {
	if offset > len(text) {
		offset = len(text)
	}
	head := text[:offset]
	line := strings.Count(head, "\n")
	lineStart := strings.LastIndexByte(head, '\n') + 1
	return Position{Line: line, Column: utf8.RuneCountInString(head[lineStart:])}
}

// MemBuffer is an in-memory Buffer.
type MemBuffer struct {
	text string
}

// NewMemBuffer returns a buffer holding text.
func NewMemBuffer(text string) *MemBuffer {
	return &MemBuffer{text: text}
}

func (b *MemBuffer) Text() string { return b.text }

func (b *MemBuffer) OffsetToPosition(offset int) Position {
	return offsetToPosition(b.text, offset)
}

func (b *MemBuffer) ApplyEdits(changes []Change) error {
	if err := validateChanges(changes, len(b.text)); err != nil {
		return err
	}
	b.text = applyChanges(b.text, changes)
	return nil
}

// FileBuffer is a Buffer backed by a note on disk. It holds the content read
// at open time; ApplyEdits refuses to write if the file changed since.
type FileBuffer struct {
	path     string
	snapshot string
	perm     os.FileMode
}

// OpenFileBuffer reads path into a new buffer.
func OpenFileBuffer(path string) (*FileBuffer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &FileBuffer{path: path, snapshot: string(content), perm: info.Mode().Perm()}, nil
}

func (b *FileBuffer) Path() string { return b.path }

func (b *FileBuffer) Text() string { return b.snapshot }

func (b *FileBuffer) OffsetToPosition(offset int) Position {
	return offsetToPosition(b.snapshot, offset)
}

// ApplyEdits writes the edited content through a temp file and rename, so
// readers see either the old note or the new one.
func (b *FileBuffer) ApplyEdits(changes []Change) error {
	if err := validateChanges(changes, len(b.snapshot)); err != nil {
		return err
	}
	current, err := os.ReadFile(b.path)
	if err != nil {
		return lerrors.ApplyFailed(b.path, err)
	}
	if string(current) != b.snapshot {
		return lerrors.StaleBuffer(b.path)
	}
	updated := applyChanges(b.snapshot, changes)
	if err := writeFileAtomic(b.path, []byte(updated), b.perm); err != nil {
		return lerrors.ApplyFailed(b.path, err)
	}
	b.snapshot = updated
	return nil
}

// writeFileAtomic writes data next to path and renames it into place.
// os.WriteFile applies umask on creation, so the temp file is chmodded to
// perm before the rename.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// rewriteBackup holds a note's original content for rollback.
type rewriteBackup struct {
	path    string
	content []byte
	perm    os.FileMode
}

// restoreBackups writes originals back (best-effort).
func restoreBackups(vaultPath string, backups []rewriteBackup) {
	for _, fb := range backups {
		_ = writeFileAtomic(filepath.Join(vaultPath, fb.path), fb.content, fb.perm)
	}
}
