package model

import "fmt"

// Privacy controls who can see an activity or ascent.
type Privacy string

const (
	PrivacyPublic        Privacy = "PUBLIC"
	PrivacyFollowersOnly Privacy = "FOLLOWERS_ONLY"
	PrivacyPrivate       Privacy = "PRIVATE"
)

// ParsePrivacy validates a privacy value from a request. An empty string is
// allowed so callers can fall back to the owner's default.
func ParsePrivacy(s string) (Privacy, error) {
	switch Privacy(s) {
	case PrivacyPublic, PrivacyFollowersOnly, PrivacyPrivate:
		return Privacy(s), nil
	case "":
		return "", nil
	}
	return "", fmt.Errorf("unknown privacy setting %q", s)
}
