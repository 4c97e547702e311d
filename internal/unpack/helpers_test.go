package unpack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/derekey/mhtml-unpack/internal/message"
)

// raw joins message lines with CRLF the way an archive on disk carries
// them.
func raw(lines ...string) string {
	return strings.Join(lines, "\r\n")
}

// parseArchive parses an MHTML fixture and fails the test on error.
func parseArchive(t *testing.T, input string) *message.Part {
	t.Helper()
	msg, err := message.ReadMessage(strings.NewReader(input))
	require.NoError(t, err)
	return msg
}
