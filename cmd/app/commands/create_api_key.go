package commands

import (
	"fmt"
	"io"

	"github.com/allisson/fieldvault/internal/http"
)

// RunCreateAPIKey generates a new service API key and its Argon2id hash.
// Only the hash is stored in configuration; the plain key is shown once and
// cannot be recovered afterwards.
func RunCreateAPIKey(w io.Writer) error {
	plainKey, hashedKey, err := http.GenerateAPIKey()
	if err != nil {
		return fmt.Errorf("failed to generate api key: %w", err)
	}

	fmt.Fprintln(w, "# API Key Configuration")
	fmt.Fprintln(w, "# The plain key below is shown only once. Hand it to the calling service")
	fmt.Fprintln(w, "# and store only the hash in the environment.")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "API Key: %s\n", plainKey)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "API_KEY_HASH=\"%s\"\n", hashedKey)

	return nil
}
