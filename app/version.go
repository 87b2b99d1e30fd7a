package app

// Version of user-audit.
// Set at build time with -ldflags "-X go.qbee.io/useraudit/app.Version=<version>".
var Version = "0.1.0"

// Commit is the VCS revision the binary was built from.
var Commit = "unknown"
