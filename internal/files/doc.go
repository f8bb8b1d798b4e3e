// Package files provides file system discovery and write utilities.
//
// Discovery lists record sources (YAML files inside per-day folders) and CSV
// files in lexical order so that every ingestion visits sources in the same
// order. Manager writes outputs atomically through a temporary file.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/data")
//	sources, err := discovery.FindSourceFiles("records")
//
//	manager := files.NewManager("/data", logger)
//	err = manager.WriteAtomic("series/ABC.csv", func(w io.Writer) error { ... })
package files
