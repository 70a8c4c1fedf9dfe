package cmdutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/alecthomas/kong"
	"golang.org/x/term"
)

// ResolveConfirm returns a kong.Resolver that asks for confirmation on the
// terminal for unset boolean flags of type 'confirm'. Without a terminal the
// flag stays unset.
func ResolveConfirm() kong.Resolver {
	return kong.ResolverFunc(func(ctx *kong.Context, parent *kong.Path, flag *kong.Flag) (interface{}, error) {
		if flag.Tag.Type != "confirm" || flag.Value.Set {
			return nil, nil
		}
		if flag.Target.Kind() != reflect.Bool {
			return nil, fmt.Errorf(`'confirm' type must be applied to a bool not %s`, flag.Target.Type())
		}
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil
		}
		ok, err := ConfirmTerminal(flag.Help)
		if err != nil {
			return nil, err
		}
		return ok, nil
	})
}

// ConfirmTerminal asks question on the controlling terminal. Without a
// terminal on stdin the answer is no.
func ConfirmTerminal(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, nil
	}
	return Confirm(os.Stdin, os.Stdout, question)
}

// Confirm writes question to w and reads a yes/no answer from r. Anything
// but "y" or "yes" is a no.
func Confirm(r io.Reader, w io.Writer, question string) (bool, error) {
	fmt.Fprintf(w, "%s [y/N]: ", strings.TrimSuffix(question, "."))
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("answer could not be read: %v", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
