package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// pick returns the flag value when the user set it, otherwise the configured
// value, otherwise the flag default.
func pick(cmd *cobra.Command, name, flagValue, cfgValue string) string {
	if cmd.Flags().Changed(name) || cfgValue == "" {
		return flagValue
	}
	return cfgValue
}

func pickInt(cmd *cobra.Command, name string, flagValue, cfgValue int) int {
	if cmd.Flags().Changed(name) || cfgValue == 0 {
		return flagValue
	}
	return cfgValue
}

// within reports whether path lies inside dir.
func within(path, dir string) bool {
	absPath, err1 := filepath.Abs(path)
	absDir, err2 := filepath.Abs(dir)
	if err1 != nil || err2 != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
