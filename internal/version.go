package internal

// Version is set at build time by the release pipeline.
var Version = "devel"
