package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// addFormFlags registers one string flag per ticket field; exec_time
// becomes --exec-time.
func addFormFlags(cmd *cobra.Command, fields []string) {
	for _, f := range fields {
		cmd.Flags().String(flagName(f), "", "ticket "+f+" (default from config)")
	}
}

// applyFormFlags copies only the flags the user actually passed, so an
// explicit empty value (--price "") still clears the field.
func applyFormFlags(cmd *cobra.Command, fields []string, set func(field, value string) error) error {
	for _, f := range fields {
		name := flagName(f)
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return err
		}
		if err := set(f, v); err != nil {
			return err
		}
	}
	return nil
}

func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

// result prints a desk's status line and turns a failed action into the
// command's error.
func result(out io.Writer, msg string, err error) error {
	if err != nil {
		if msg == "" {
			return err
		}
		return errors.New(msg)
	}
	if msg != "" {
		fmt.Fprintf(out, "✓ %s\n", msg)
	}
	return nil
}
