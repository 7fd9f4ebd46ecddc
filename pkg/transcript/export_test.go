package transcript

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFormat(t *testing.T) {
	l := NewLog()
	l.Append(Entry{Question: "Hi", Answer: "Hello"})
	l.Append(Entry{Question: "", Answer: "🗂 Uploaded File: a.pdf"})

	var sb strings.Builder
	require.NoError(t, l.Export(&sb))

	assert.Equal(t, "Q: Hi\nA: Hello\n\n🗂 Uploaded File: a.pdf\n\n", sb.String())
}

func TestExportEmptyLog(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, NewLog().Export(&sb))
	assert.Empty(t, sb.String())
}

func TestExportOneSidedEntriesKeepQAFraming(t *testing.T) {
	// History rows can carry only a question or only an answer; the export
	// keeps the Q:/A: framing for anything that is not an upload notice.
	l := NewLog()
	l.Append(Entry{Question: "pending"})

	var sb strings.Builder
	require.NoError(t, l.Export(&sb))
	assert.Equal(t, "Q: pending\nA: \n\n", sb.String())
}

func TestSanitizeTitle(t *testing.T) {
	assert.Equal(t, "chat_report_2024_", SanitizeTitle("Chat-(Report 2024)"))
	assert.Equal(t, "plain", SanitizeTitle("plain"))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "reportq4.pdf", SanitizeFileName(` repo\rt/q4?*.pdf `))
	assert.Equal(t, "notes.txt", SanitizeFileName("notes.txt"))
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "budget_review_2024-05-17.txt", ExportFileName("Budget Review", now))
	assert.Equal(t, "chat_log_2024-05-17.txt", ExportFileName("", now))
}
