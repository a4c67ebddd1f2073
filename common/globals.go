package common

// KeelVersion is the current compiler version as a string.
const KeelVersion string = "0.1.0"

// KeelModuleFileName is the name for module files.
const KeelModuleFileName string = "keel-mod.toml"

// KeelFileExt is the file extension for a source file.
const KeelFileExt string = ".kl"

// DefaultMaxPrepareAttempts is the default number of times the preparation
// worklist will try to prepare a single entity before giving up.
const DefaultMaxPrepareAttempts int = 8
