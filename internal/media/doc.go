// Package media defines the media record stored by the library and the path
// conventions shared by the store, the disks, and the conversion engine.
//
// A Media value describes one uploaded original: which model owns it, which
// disk holds the file, and which derived conversions have been generated.
// Records are created and removed by the store; batch commands only read them
// and update the generated conversion flags.
package media
