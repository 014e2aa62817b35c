package internal

// Version is the babelfish release version, overridden at build time via -ldflags.
var Version = "0.3.0"
