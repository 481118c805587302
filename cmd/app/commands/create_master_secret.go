package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
)

// RunCreateMasterSecret generates a cryptographically secure 32-byte master
// secret from which all tenant and index keys are derived. Secret material is
// zeroed from memory after encoding.
//
// When kmsKeyURI is empty the secret is printed base64-encoded for the
// MASTER_SECRET environment variable. When kmsKeyURI is set the secret is
// wrapped by the KMS before output and printed as MASTER_SECRET_CIPHERTEXT,
// so the plaintext secret never touches the environment.
//
// For local development, use kmsKeyURI="base64key://<32-byte-base64-key>".
// For production, use cloud KMS URIs (gcpkms://, awskms://, azurekeyvault://, hashivault://).
func RunCreateMasterSecret(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	w io.Writer,
	kmsKeyURI string,
) error {
	// Generate a cryptographically secure 32-byte master secret
	masterSecret := make([]byte, 32)
	if _, err := rand.Read(masterSecret); err != nil {
		return fmt.Errorf("failed to generate master secret: %w", err)
	}
	defer func() {
		// Zero out the secret from memory
		for i := range masterSecret {
			masterSecret[i] = 0
		}
	}()

	if kmsKeyURI == "" {
		fmt.Fprintln(w, "# Master Secret Configuration (plain mode)")
		fmt.Fprintln(w, "# Copy this environment variable to your .env file or secrets manager.")
		fmt.Fprintln(w, "# Anyone holding this value can derive every tenant key; prefer KMS mode in production.")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "MASTER_SECRET=\"%s\"\n", base64.StdEncoding.EncodeToString(masterSecret))
		return nil
	}

	// Open the KMS keeper and wrap the secret
	keeperInterface, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeperInterface.Close(); closeErr != nil {
			fmt.Fprintf(w, "# Warning: failed to close KMS keeper: %v\n", closeErr)
		}
	}()

	// The keeper contract only needs Decrypt at runtime; wrapping is CLI-only
	keeper, ok := keeperInterface.(interface {
		Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	})
	if !ok {
		return fmt.Errorf("KMS keeper does not support encryption")
	}

	ciphertext, err := keeper.Encrypt(ctx, masterSecret)
	if err != nil {
		return fmt.Errorf("failed to wrap master secret with KMS: %w", err)
	}

	fmt.Fprintln(w, "# Master Secret Configuration (KMS mode)")
	fmt.Fprintln(w, "# Copy these environment variables to your .env file or secrets manager")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	fmt.Fprintf(w, "MASTER_SECRET_CIPHERTEXT=\"%s\"\n", base64.StdEncoding.EncodeToString(ciphertext))

	return nil
}
