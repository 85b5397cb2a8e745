// Package conversion generates the derived renditions configured for media
// records.
//
// The Manipulator reads an original from its disk, applies every applicable
// conversion with disintegration/imaging, writes the results to the media's
// conversions disk and records which conversions exist on the media record.
// Failures are reported as *DerivationError values so callers can attribute
// them to a record and conversion.
package conversion
