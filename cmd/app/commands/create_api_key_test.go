package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunCreateAPIKey(t *testing.T) {
	var out bytes.Buffer
	err := RunCreateAPIKey(&out)
	require.NoError(t, err)

	output := out.String()
	require.Contains(t, output, "API Key: ")
	require.Contains(t, output, "API_KEY_HASH=\"$argon2id$")

	// Two invocations must never produce the same key
	var second bytes.Buffer
	require.NoError(t, RunCreateAPIKey(&second))
	require.NotEqual(t, extractLine(output, "API Key: "), extractLine(second.String(), "API Key: "))
}

// extractLine returns the first output line starting with the given prefix.
func extractLine(output, prefix string) string {
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}
