package main

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// uiMode is the value of --ui.
type uiMode uint8

const (
	uiOff uiMode = iota
	uiAuto
	uiOn
)

var uiModes = map[string]uiMode{"": uiOff, "off": uiOff, "auto": uiAuto, "on": uiOn}

func parseUIMode(value string) (uiMode, error) {
	if m, ok := uiModes[strings.ToLower(strings.TrimSpace(value))]; ok {
		return m, nil
	}
	return uiOff, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// enabled decides whether the progress UI draws on out. Auto only draws on
// a terminal.
func (m uiMode) enabled(out io.Writer) bool {
	switch m {
	case uiOn:
		return true
	case uiAuto:
		f, ok := out.(*os.File)
		return ok && isTerminal(f)
	}
	return false
}
