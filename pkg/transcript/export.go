package transcript

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultExportTitle is used when no session title can be resolved, e.g.
// for guests whose directory listing redirects to the login page.
const DefaultExportTitle = "chat_log"

var (
	titleSanitizeRe = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	fileSanitizeRe  = regexp.MustCompile(`[<>:"/\\|?*]+`)
)

// SanitizeTitle turns a session title into a filename-safe slug: runs of
// non-alphanumerics collapse to underscores and the result is lowercased.
func SanitizeTitle(title string) string {
	return strings.ToLower(titleSanitizeRe.ReplaceAllString(title, "_"))
}

// SanitizeFileName strips characters that are illegal in a filesystem path
// from an uploaded file's name and trims surrounding whitespace. Used both
// for upload notices and for deriving implicit session titles.
func SanitizeFileName(name string) string {
	return strings.TrimSpace(fileSanitizeRe.ReplaceAllString(name, ""))
}

// ExportFileName builds `{sanitized-title|chat_log}_{ISO-date}.txt`.
func ExportFileName(title string, now time.Time) string {
	slug := DefaultExportTitle
	if title != "" {
		slug = SanitizeTitle(title)
	}
	return fmt.Sprintf("%s_%s.txt", slug, now.Format("2006-01-02"))
}

// Export writes the log as plain text, one block per entry in append order:
// notices render as the bare answer, exchanges as a Q:/A: pair, each block
// followed by a blank line.
func (l *Log) Export(w io.Writer) error {
	for _, e := range l.Entries() {
		var block string
		if e.IsNotice() {
			block = fmt.Sprintf("%s\n\n", e.Answer)
		} else {
			block = fmt.Sprintf("Q: %s\nA: %s\n\n", e.Question, e.Answer)
		}
		if _, err := io.WriteString(w, block); err != nil {
			return errors.Wrap(err, "writing transcript export")
		}
	}
	return nil
}
