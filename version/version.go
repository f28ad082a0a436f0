package version

// Version is the current version of implib. Overridden at build time with
// -ldflags "-X github.com/xll-gen/implib/version.Version=...".
var Version = "v0.1.0"
