// Package config holds the ambient, globally-relevant settings the
// type-reasoning core needs but never discovers on its own: target version,
// target platform, alias tables, and a couple of process-wide mode flags.
// There is no global configuration object (see DESIGN.md) — every call that
// might need environment data takes an *ExecutionEnvironment explicitly.
package config

import "strings"

// Version is the current typecore module version.
var Version = "0.1.0"

// IsTestMode mirrors the teacher's config.IsTestMode. No package in this
// module reads it: type variables always print their own names.
var IsTestMode = false

// IsDebugMode is a process-wide debug flag. No package in this module reads
// it; solver tracing is enabled by installing a constraints.Tracer.
var IsDebugMode = false

// Platform enumerates the target platforms the static-expression folder
// compares sys.platform / os.name against.
type Platform int

const (
	PlatformOther Platform = iota
	PlatformLinux
	PlatformDarwin
	PlatformWindows
)

func (p Platform) String() string {
	switch p {
	case PlatformLinux:
		return "linux"
	case PlatformDarwin:
		return "darwin"
	case PlatformWindows:
		return "win32"
	default:
		return "other"
	}
}

// ParsePlatform maps a raw platform string (as written in source, e.g.
// "linux", "darwin", "win32") to a Platform. Unknown strings become
// PlatformOther rather than an error — the folder simply won't match them.
func ParsePlatform(s string) Platform {
	switch strings.ToLower(s) {
	case "linux":
		return PlatformLinux
	case "darwin", "macos", "osx":
		return PlatformDarwin
	case "windows", "win32":
		return PlatformWindows
	default:
		return PlatformOther
	}
}

// EncodeVersion packs a (major, minor) version pair the way the host
// language encodes sys.version_info comparisons: major*256+minor. Folding
// compares against this encoding so that (3, 12) < (3, 100) holds without
// lexicographic surprises.
func EncodeVersion(major, minor int) int {
	return major*256 + minor
}

// ExecutionEnvironment is the env parameter threaded through every call that
// needs target information (spec.md §4.A, §6).
type ExecutionEnvironment struct {
	// PythonVersion is major*256+minor, e.g. EncodeVersion(3, 12).
	PythonVersion int
	// PythonPlatform is the configured target platform.
	PythonPlatform Platform
	// TypingModuleAliases lists import aliases that resolve to the typing module.
	TypingModuleAliases []string
	// SysModuleAliases lists import aliases that resolve to the sys module.
	SysModuleAliases []string
	// OsModuleAliases lists import aliases that resolve to the os module.
	OsModuleAliases []string
}

// IsSysAlias reports whether name is an alias the environment recognizes for
// the sys module (including the bare name "sys").
func (e *ExecutionEnvironment) IsSysAlias(name string) bool {
	if name == "sys" {
		return true
	}
	for _, a := range e.SysModuleAliases {
		if a == name {
			return true
		}
	}
	return false
}

// IsOsAlias reports whether name is an alias the environment recognizes for
// the os module (including the bare name "os").
func (e *ExecutionEnvironment) IsOsAlias(name string) bool {
	if name == "os" {
		return true
	}
	for _, a := range e.OsModuleAliases {
		if a == name {
			return true
		}
	}
	return false
}

// IsTypingAlias reports whether name is an alias the environment recognizes
// for the typing module (including the bare name "typing").
func (e *ExecutionEnvironment) IsTypingAlias(name string) bool {
	if name == "typing" {
		return true
	}
	for _, a := range e.TypingModuleAliases {
		if a == name {
			return true
		}
	}
	return false
}
