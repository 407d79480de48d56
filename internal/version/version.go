// Package version holds the toolkit release string.
package version

const Version = "0.5"

func Get() string { return Version }
