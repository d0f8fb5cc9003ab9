// Package acquire turns a content locator (a remote video URL or a local
// file) into a local audio asset. Remote locators go through an ordered,
// inspectable chain of download strategies; the first strategy that leaves a
// non-empty audio file wins and every file written by a failed attempt is
// removed before the next one starts.
package acquire
