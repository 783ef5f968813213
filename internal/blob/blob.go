// Package blob stores receipt images and returns their public URLs.
package blob

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Store uploads a file and returns the URL it is publicly reachable at.
type Store interface {
	Upload(ctx context.Context, data []byte, nameHint string) (string, error)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectName builds "<unix-millis>_<sanitised hint>". The hint is reduced to
// its base name and stripped of anything outside [A-Za-z0-9._-].
func ObjectName(now time.Time, nameHint string) string {
	base := filepath.Base(strings.ReplaceAll(nameHint, `\`, "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "receipt"
	}
	return fmt.Sprintf("%d_%s", now.UnixMilli(), base)
}
