package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const referencePrefix = "LEI"

// Stored references are uppercase: LEI- followed by two alphanumeric
// segments (base36 timestamp, random suffix).
var referenceRegex = regexp.MustCompile(`^LEI-[0-9A-Z]{1,12}-[0-9A-Z]{1,12}$`)

// GenerateReferenceNumber builds a new human-facing reference number.
// The timestamp segment keeps references roughly sortable; the random
// segment makes collisions within the same millisecond harmless.
func GenerateReferenceNumber() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:5]
	return strings.ToUpper(fmt.Sprintf("%s-%s-%s", referencePrefix, ts, random))
}

// NormalizeReference canonicalizes citizen input for lookup: whitespace
// trimmed, uppercased.
func NormalizeReference(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}

// ValidateReference reports whether the normalized reference matches the
// expected format.
func ValidateReference(ref string) bool {
	return referenceRegex.MatchString(NormalizeReference(ref))
}
