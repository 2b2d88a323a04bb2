// Package version centralizes the versioning of the agent's logical
// components.
//
// The hosted service keeps agents alive across restarts, and agent creation
// is idempotent by name. Including these version strings in the provisioned
// agent's identity automatically retires stale hosted agents whenever the
// local logic changes: bump Tools after changing a tool's behavior or schema,
// bump Instructions after editing the system instructions, and the next
// startup provisions a fresh agent instead of reusing one bound to the old
// contract.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComponentVersions holds the version strings for the logical parts of the
// agent definition. Increment manually before deploying a change to that
// component.
var ComponentVersions = struct {
	// Tools covers the tool functions' behavior and schemas.
	Tools string
	// Instructions covers the natural-language system instructions.
	Instructions string
}{
	Tools:        "v1.0",
	Instructions: "v1.0",
}

// AgentSuffix derives a short, stable identity suffix for a hosted agent from
// its instructions, its bound tool names, and the component versions. Two
// deployments with the same definition produce the same suffix, so the
// idempotent lookup finds the existing agent; any change produces a new one.
func AgentSuffix(instructions string, toolNames []string) string {
	hasher := sha256.New()
	hasher.Write([]byte(instructions))
	hasher.Write([]byte(strings.Join(toolNames, ",")))
	fmt.Fprintf(hasher, "t%s_i%s", ComponentVersions.Tools, ComponentVersions.Instructions)
	return hex.EncodeToString(hasher.Sum(nil))[:8]
}
