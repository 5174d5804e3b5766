package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	failColor  = color.New(color.FgRed, color.Bold)
	labelColor = color.New(color.FgCyan)
)

// applyColorFlag honours --color; "auto" leaves fatih/color's terminal
// detection in charge.
func applyColorFlag(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "auto":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid color mode: %q (expected: auto|on|off)", mode)
	}
	return nil
}
