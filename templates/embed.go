// Package templates embeds the default watch configuration and the initial
// parameter config written by observer init.
package templates

import "embed"

//go:embed observer.yaml parameters.json
var FS embed.FS
