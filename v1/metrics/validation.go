package metrics

import "fmt"

// Metric, prefix and label names share the same restricted alphabet:
// ASCII, starting with [_a-z], continuing with [_a-z0-9]. Anything else is
// rejected eagerly so that an inconsistent registry can never be built.

func isValidNameStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z')
}

func isValidNameChar(ch byte) bool {
	return isValidNameStart(ch) || (ch >= '0' && ch <= '9')
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if ch > 127 {
			return fmt.Errorf("name %q contains non-ASCII chars", name)
		}
		if i == 0 && !isValidNameStart(ch) {
			return fmt.Errorf("name %q starts with disallowed char (allowed chars: [_a-z])", name)
		}
		if !isValidNameChar(ch) {
			return fmt.Errorf("name %q contains disallowed char (allowed chars: [_a-z0-9])", name)
		}
	}
	return nil
}

func assertMetricName(name string) {
	if err := validateName(name); err != nil {
		panic(fmt.Sprintf("metrics: invalid metric name: %v", err))
	}
}

func assertMetricPrefix(prefix string) {
	if err := validateName(prefix); err != nil {
		panic(fmt.Sprintf("metrics: invalid metric prefix: %v", err))
	}
}

func assertLabelName(name string) {
	if err := validateName(name); err != nil {
		panic(fmt.Sprintf("metrics: invalid label name: %v", err))
	}
}
