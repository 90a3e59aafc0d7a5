package release

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// infoPayload covers the release-bearing responses of the info endpoints:
// /info/data returns {"releases":[113]} and /info/software {"release":113}.
type infoPayload struct {
	Releases []json.Number `json:"releases"`
	Release  json.Number   `json:"release"`
}

// ParseVersion extracts the release token from an info endpoint body.
func ParseVersion(body []byte) (string, error) {
	var p infoPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return "", fmt.Errorf("release: decode info response: %w", err)
	}

	var raw json.Number
	switch {
	case len(p.Releases) > 0:
		raw = p.Releases[0]
	case p.Release != "":
		raw = p.Release
	default:
		return "", ErrNoRelease
	}

	// Normalize "113.0" style numbers to "113".
	if f, err := strconv.ParseFloat(raw.String(), 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10), nil
	}
	return raw.String(), nil
}
