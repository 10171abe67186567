// Package scripts embeds the bundled Risor reference scripts.
package scripts

import "embed"

// FS holds the bundled scripts, addressed as "references/<name>.risor".
//
//go:embed references/*.risor
var FS embed.FS

// DefaultReferences is the bundled reference script the CLI enables with
// --script when no path is given.
const DefaultReferences = "references/extras.risor"
