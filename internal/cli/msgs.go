package cli

import (
	_ "embed"
	"strings"
)

// Short messages
const (
	MsgRootShort = "Rename, move and delete files by editing their names in your editor"

	// Flag descriptions
	MsgFlagVerbose    = "Print each change; repeat for logs (-vv INFO, -vvv DEBUG, -vvvv TRACE)"
	MsgFlagDepth      = "Levels to list below each directory (default from config: 1)"
	MsgFlagDryRun     = "Print the plan without changing anything"
	MsgFlagNoCycles   = "Refuse rename cycles instead of breaking them with temporary names"
	MsgFlagConfig     = "Config file (default $XDG_CONFIG_HOME/rendir/config.toml)"
	MsgFlagShowConfig = "Print the effective configuration as TOML and exit"

	// Error messages
	MsgErrDepth      = "--depth must be at least 1, got %d"
	MsgErrShowConfig = "failed to render configuration"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/root-example.txt
	msgRootExampleRaw string
	MsgRootExample    = strings.TrimRight(msgRootExampleRaw, "\n")

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
