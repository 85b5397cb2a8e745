// Package preflight provides readiness checks for the paths, media store and
// disks medialib depends on.
//
// The CLI "medialib status" command runs RunAll and renders each Result as a
// status line. Checks never modify media records; disk checks write and
// remove a small probe object.
package preflight
