package internal

// Version is the kikitori release version.
const Version = "0.4.0"
