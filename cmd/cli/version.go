package cli

import (
	"context"
	"runtime/debug"
	"strings"
)

const (
	unknownVersionConstant        = "unknown"
	develVersionConstant          = "(devel)"
	develVersionPrefixConstant    = "devel+"
	vcsRevisionSettingKeyConstant = "vcs.revision"
	shortRevisionLengthConstant   = 12
)

// Version is stamped at link time with -ldflags "-X github.com/temirov/changetree/cmd/cli.Version=v1.2.3".
var Version = ""

type buildInfoReader func() (*debug.BuildInfo, bool)

// resolveApplicationVersion prefers the link-time Version, then the module
// version recorded in the binary, then the VCS revision.
func resolveApplicationVersion(readBuildInfo buildInfoReader) string {
	if trimmedVersion := strings.TrimSpace(Version); len(trimmedVersion) > 0 {
		return trimmedVersion
	}

	buildInfo, buildInfoAvailable := readBuildInfo()
	if !buildInfoAvailable || buildInfo == nil {
		return unknownVersionConstant
	}
	if moduleVersion := buildInfo.Main.Version; len(moduleVersion) > 0 && moduleVersion != develVersionConstant {
		return moduleVersion
	}
	for _, setting := range buildInfo.Settings {
		if setting.Key != vcsRevisionSettingKeyConstant || len(setting.Value) == 0 {
			continue
		}
		revision := setting.Value
		if len(revision) > shortRevisionLengthConstant {
			revision = revision[:shortRevisionLengthConstant]
		}
		return develVersionPrefixConstant + revision
	}
	return unknownVersionConstant
}

func defaultVersionResolver(context.Context) string {
	return resolveApplicationVersion(debug.ReadBuildInfo)
}
