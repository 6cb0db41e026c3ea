// Package connectors holds implementations that locate and read note
// sources. Each connector knows how to resolve a specific source type
// into the file contents handed to the normalisers.
//
// The filesystem connector is the only local source; remote sources
// are external collaborators that feed the same ingestion pipeline.
package connectors
