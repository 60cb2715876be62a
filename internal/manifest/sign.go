package manifest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Signer produces a detached signature for a file and returns its path.
type Signer interface {
	Sign(ctx context.Context, path string) (string, error)
}

// CosignSigner signs blobs keylessly with the cosign CLI.
type CosignSigner struct {
	// Binary defaults to "cosign" on PATH.
	Binary string
	// Env is appended to the process environment.
	Env []string
}

// SignaturePath is where a signature for path is written.
func SignaturePath(path string) string { return path + ".sig" }

func (s CosignSigner) Sign(ctx context.Context, path string) (string, error) {
	bin := s.Binary
	if bin == "" {
		bin = "cosign"
	}
	sig := SignaturePath(path)
	cmd := exec.CommandContext(ctx, bin, "sign-blob", "--yes", "--output-signature", sig, path)
	cmd.Env = append(append(os.Environ(), "COSIGN_EXPERIMENTAL=1"), s.Env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("cosign sign-blob: %w: %s", err, msg)
		}
		return "", fmt.Errorf("cosign sign-blob: %w", err)
	}
	return sig, nil
}
