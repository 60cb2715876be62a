package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mirror/internal/format"
	"mirror/internal/logging"
	"mirror/internal/manifest"
)

var manifestFlags struct {
	out  string
	sign bool
}

// newSigner is swapped in tests.
var newSigner = func() manifest.Signer { return manifest.CosignSigner{} }

var manifestCmd = &cobra.Command{
	Use:   "manifest <artifacts_dir>",
	Short: "Write a sha256 manifest of every file in an artifacts directory",
	Long: `Hashes every file below artifacts_dir and writes a mirror.manifest.v1
document. With --sign the manifest is signed keylessly with cosign; a signing
failure is reported but does not fail the command.`,
	Args: cobra.ExactArgs(1),
	RunE: runManifest,
}

func init() {
	f := manifestCmd.Flags()
	f.StringVarP(&manifestFlags.out, "output", "o", manifest.DefaultPath, "Manifest output path")
	f.BoolVar(&manifestFlags.sign, "sign", false, "Sign the manifest with cosign (writes <output>.sig)")
}

func runManifest(cmd *cobra.Command, args []string) error {
	dir, outPath := args[0], manifestFlags.out

	var skip []string
	if within(outPath, dir) {
		skip = append(skip, outPath, manifest.SignaturePath(outPath))
	}
	m, err := manifest.Build(cmd.Context(), dir, skip...)
	if err != nil {
		return err
	}
	if err := manifest.Write(outPath, m); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Manifest written: %s\n", outPath)
	fmt.Fprintf(out, "  %d artifacts cataloged\n", len(m.Artifacts))
	if len(m.Artifacts) > 0 {
		if _, err := artifactTable(m.Artifacts).WriteTo(out); err != nil {
			return err
		}
	}

	if !manifestFlags.sign {
		return nil
	}
	sig, err := newSigner().Sign(cmd.Context(), outPath)
	if err != nil {
		logging.New("manifest").Warn("signing failed", "path", outPath, "error", err)
		fmt.Fprintf(out, "⚠ Cosign signing failed: %v\n", err)
		fmt.Fprintln(out, "  Install cosign for signature support: https://github.com/sigstore/cosign")
		return nil
	}
	fmt.Fprintf(out, "✓ Signed manifest: %s\n", sig)
	return nil
}

func artifactTable(entries []manifest.Entry) *format.Table {
	tb := format.NewTable(format.ASCII)
	tb.Header("Path", "Size", "SHA256")
	var total int64
	for _, e := range entries {
		tb.Row(e.Path, format.Bytes(e.Size), format.Truncate(e.SHA256, 15))
		total += e.Size
	}
	tb.Footer("Total", format.Bytes(total), "")
	tb.Align(2, format.AlignRight)
	tb.MaxWidth(1, 60)
	return tb
}
