package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidDuration = errors.New("invalid duration")

// Duration is a time.Duration that travels as "[-]HH:MM:SS".
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	total := int64(time.Duration(d) / time.Second)
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	seconds := total % 60
	minutes := (total / 60) % 60
	hours := total / 3600
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, hours, minutes, seconds)
}

// ParseDuration accepts "M", "M:S" or "H:M:S", with ':' or '.' separators and
// an optional leading '-'. Hours are capped at 23, minutes and seconds at 59.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidDuration)
	}
	sign := time.Duration(1)
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		sign = -1
		s = rest
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == '.' })
	if strings.HasSuffix(s, ":") || strings.HasSuffix(s, ".") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	nums := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		nums[i] = n
	}

	var hours, minutes, seconds int64
	switch len(nums) {
	case 1:
		minutes = nums[0]
	case 2:
		minutes, seconds = nums[0], nums[1]
	case 3:
		hours, minutes, seconds = nums[0], nums[1], nums[2]
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	if hours > 23 || minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidDuration, s)
	}

	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	return Duration(d * sign), nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: expected string", ErrInvalidDuration)
	}
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
