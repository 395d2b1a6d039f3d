package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// VerifyGPGSignature checks the armored detached signature of the target's contents against the
// armored public keys found in keyRingFilePath
func VerifyGPGSignature(target io.Reader, signatureFilePath, keyRingFilePath string) error {
	signatureFile, err := os.Open(signatureFilePath)
	if err != nil {
		return fmt.Errorf("failed to open file '%s': %w", signatureFilePath, err)
	}
	defer func() {
		closeErr := signatureFile.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "failed to close '%s': %v\n", signatureFilePath, closeErr)
		}
	}()

	keyRingFile, err := os.Open(keyRingFilePath)
	if err != nil {
		return fmt.Errorf("failed to open keyring '%s': %w", keyRingFilePath, err)
	}
	defer func() {
		closeErr := keyRingFile.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "failed to close keyring '%s': %v\n", keyRingFilePath, closeErr)
		}
	}()

	keyRing, err := openpgp.ReadArmoredKeyRing(keyRingFile)
	if err != nil {
		return fmt.Errorf("failed to read GPG keys from '%s': %w", keyRingFilePath, err)
	}

	_, err = openpgp.CheckArmoredDetachedSignature(keyRing, target, signatureFile, &packet.Config{})
	if err != nil {
		return fmt.Errorf("failed to verify file signature: %w", err)
	}

	return nil
}
