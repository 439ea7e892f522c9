package mpv

import (
	"fmt"
	"strings"
)

// Option is a backend option applied before initialization.
type Option struct {
	Name  string
	Value string
}

// ParseOptions parses whitespace separated --key, --key=value and --no-key tokens.
// Tokens that do not start with "--" are reported and skipped.
func ParseOptions(raw string) ([]Option, []error) {
	var (
		options []Option
		errs    []error
	)

	for _, token := range strings.Fields(raw) {
		if !strings.HasPrefix(token, "--") || len(token) == 2 {
			errs = append(errs, fmt.Errorf("cannot parse option %q", token))
			continue
		}

		body := token[2:]
		if name, value, ok := strings.Cut(body, "="); ok {
			if name == "" {
				errs = append(errs, fmt.Errorf("cannot parse option %q", token))
				continue
			}
			options = append(options, Option{Name: name, Value: value})
			continue
		}

		if name, ok := strings.CutPrefix(body, "no-"); ok && name != "" {
			options = append(options, Option{Name: name, Value: "no"})
			continue
		}

		options = append(options, Option{Name: body, Value: "yes"})
	}

	return options, errs
}
