package www

import (
	"net/url"
	"strconv"
)

// intInRange reads an integer query parameter, clamped to [min, max].
func intInRange(u *url.URL, key string, defaultValue, min, max int) int {
	v := u.Query().Get(key)
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	if i < min {
		return min
	}
	if i > max {
		return max
	}
	return i
}
