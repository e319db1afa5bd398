package prompt

import "embed"

// embeddedPrompts holds the built-in protocol sections so packaged
// executables can load them without needing access to the source tree.
//
//go:embed prompts/*.txt
var embeddedPrompts embed.FS
