// Package export saves CSV downloads so spreadsheet apps detect UTF-8: the
// written file always starts with exactly one byte-order mark.
package export

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BOM is the UTF-8 byte-order mark.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// FixBOM returns a reader that yields one BOM followed by r with every
// leading BOM removed.
func FixBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	for {
		head, err := br.Peek(len(BOM))
		if err != nil || !bytes.Equal(head, BOM) {
			break
		}
		if _, err := br.Discard(len(BOM)); err != nil {
			break
		}
	}
	return io.MultiReader(bytes.NewReader(BOM), br)
}

// StripBOM drops any leading BOMs, for readers that must not see them.
func StripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	for {
		head, err := br.Peek(len(BOM))
		if err != nil || !bytes.Equal(head, BOM) {
			return br
		}
		_, _ = br.Discard(len(BOM))
	}
}

// Filename is the default name for an export of kind over a period.
func Filename(kind, scope, base string) string {
	return fmt.Sprintf("%s_%s_%s.csv", kind, scope, base)
}

// Target picks where to write: out when given, else dir joined with the
// server-suggested name, else dir joined with fallback.
func Target(out, dir, suggested, fallback string) string {
	if out = strings.TrimSpace(out); out != "" {
		return out
	}
	name := filepath.Base(strings.TrimSpace(suggested))
	switch name {
	case ".", "..", string(filepath.Separator):
		name = fallback
	}
	return filepath.Join(dir, name)
}

// Save writes r to path with the BOM fix applied, via a temp file renamed
// into place. It returns the number of bytes written.
func Save(path string, r io.Reader) (int64, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, FixBOM(r))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return n, err
	}
	return n, os.Rename(tmp, path)
}
