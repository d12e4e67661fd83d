package metrics

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// LabelPair is a single encoded label.
type LabelPair struct {
	Name  string
	Value string
}

// LabelSet is implemented by types that describe their own label names and
// values. Label values are used verbatim; label names must match
// [_a-z][_a-z0-9]*.
//
// Types that are plain values (strings, integers, small arrays of either)
// can be used as family labels without implementing LabelSet by supplying
// label names out-of-band via WithLabelNames.
type LabelSet interface {
	MetricLabels() []LabelPair
}

// Labels is a ready-made LabelSet backed by a map. Labels are encoded in
// lexicographic name order so that output is deterministic.
type Labels map[string]string

// MetricLabels implements the LabelSet interface. Panics if a label name is
// invalid; map keys cannot be checked any earlier than first use.
func (l Labels) MetricLabels() []LabelPair {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([]LabelPair, len(names))
	for i, name := range names {
		assertLabelName(name)
		pairs[i] = LabelPair{Name: name, Value: l[name]}
	}
	return pairs
}

// labelPairsFor resolves a label value of any supported shape into encoded
// pairs. Self-describing label sets take priority; otherwise the value is
// treated as a plain value (or a fixed-size array of plain values) matched
// positionally against the out-of-band label names.
func labelPairsFor(labels any, names []string) ([]LabelPair, error) {
	if labels == nil {
		return nil, nil
	}
	if set, ok := labels.(LabelSet); ok {
		return set.MetricLabels(), nil
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("metrics: label type %T does not implement LabelSet and no label names were supplied", labels)
	}

	value := reflect.ValueOf(labels)
	if value.Kind() == reflect.Array {
		if value.Len() != len(names) {
			return nil, fmt.Errorf("metrics: label array has %d elements, %d label names supplied", value.Len(), len(names))
		}
		pairs := make([]LabelPair, value.Len())
		for i := range pairs {
			pairs[i] = LabelPair{Name: names[i], Value: formatLabelValue(value.Index(i).Interface())}
		}
		return pairs, nil
	}

	if len(names) != 1 {
		return nil, fmt.Errorf("metrics: single label value %T cannot satisfy %d label names", labels, len(names))
	}
	return []LabelPair{{Name: names[0], Value: formatLabelValue(labels)}}, nil
}

func formatLabelValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case fmt.Stringer:
		return value.String()
	case bool:
		return strconv.FormatBool(value)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case uint64:
		return strconv.FormatUint(value, 10)
	case float64:
		return formatFloat(value)
	default:
		return fmt.Sprint(value)
	}
}

// renderLabelPairs renders pairs into the `name="value"` wire form,
// escaping backslashes, quotes and newlines in values.
func renderLabelPairs(pairs []LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	out := make([]byte, 0, 16*len(pairs))
	for i, pair := range pairs {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, pair.Name...)
		out = append(out, '=', '"')
		out = appendEscaped(out, pair.Value)
		out = append(out, '"')
	}
	return string(out)
}

func appendEscaped(out []byte, value string) []byte {
	for i := 0; i < len(value); i++ {
		switch ch := value[i]; ch {
		case '\\':
			out = append(out, '\\', '\\')
		case '"':
			out = append(out, '\\', '"')
		case '\n':
			out = append(out, '\\', 'n')
		default:
			out = append(out, ch)
		}
	}
	return out
}
