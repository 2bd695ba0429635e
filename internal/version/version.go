// ABOUTME: Version and product identification constants
// ABOUTME: Shared by the synthesizer, remote hello and mDNS records
package version

const (
	// Version is the release version of the synthesizer
	Version = "0.3.0"

	// Product is the human-readable product name
	Product = "Resonate Synth"

	// Manufacturer identifies who builds the product
	Manufacturer = "Resonate"
)
