package proposal

import (
	"fmt"
	"regexp"
	"strconv"
)

var versionRegex = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)`)

// defaultVersion is the recovery value when the current version string is
// unparseable. Version corruption must not halt the pipeline, so the bump
// falls back instead of failing.
const defaultVersion = "v0.2.0"

// BumpVersion bumps a semver-style version string: low impact increments
// PATCH, medium and high increment MINOR and reset PATCH.
func BumpVersion(version string, impact ImpactLevel) string {
	match := versionRegex.FindStringSubmatch(version)
	if match == nil {
		return defaultVersion
	}

	major, _ := strconv.Atoi(match[1])
	minor, _ := strconv.Atoi(match[2])
	patch, _ := strconv.Atoi(match[3])

	if impact == ImpactLow {
		patch++
	} else {
		minor++
		patch = 0
	}
	return fmt.Sprintf("v%d.%d.%d", major, minor, patch)
}
