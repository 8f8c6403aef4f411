package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// strToBool is a boolean flag which requires a value: y, yes, t, true,
// on and 1 are true; n, no, f, false, off and 0 are false.
type strToBool bool

var _ pflag.Value = (*strToBool)(nil)

func (b *strToBool) String() string {
	return strconv.FormatBool(bool(*b))
}

func (b *strToBool) Set(s string) error {
	switch strings.ToLower(s) {
	case "y", "yes", "t", "true", "on", "1":
		*b = true
	case "n", "no", "f", "false", "off", "0":
		*b = false
	default:
		return fmt.Errorf("invalid truth value '%s'", s)
	}
	return nil
}

func (b *strToBool) Type() string {
	return "strtobool"
}
