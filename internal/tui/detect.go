package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents how results are presented.
type Mode int

const (
	// ModePlain is used for CI/CD pipelines, scripts, and redirected output.
	ModePlain Mode = iota
	// ModeStyled is used when a human is at the terminal.
	ModeStyled
)

// DetectMode determines whether output can be styled.
//
// Returns ModePlain if:
//   - PULSE_PLAIN=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set (accessibility/automation indicator)
//   - stdout is not a terminal
//
// Returns ModeStyled otherwise.
func DetectMode() Mode {
	if os.Getenv("PULSE_PLAIN") == "1" {
		return ModePlain
	}
	if os.Getenv("CI") != "" {
		return ModePlain
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ModePlain
	}
	return ModeStyled
}

// IsStyled is a convenience function that returns true if running in styled mode.
func IsStyled() bool {
	return DetectMode() == ModeStyled
}
