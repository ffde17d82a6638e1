package version

// Version is the build version, overridden at link time via
// -ldflags "-X snapsort/pkg/version.Version=...".
var Version = "dev"
