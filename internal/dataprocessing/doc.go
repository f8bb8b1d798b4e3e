// Package dataprocessing turns raw price sources into ordered per-symbol series.
//
// # Components
//
//  1. Normalizer: derives a timestamp from each source name and decodes its
//     YAML entries into PriceRecords, applying the configured entry policy.
//  2. Series builder: groups records by symbol and sorts them chronologically.
//  3. Sector resolver: loads the symbol to sector table.
//
// # Usage
//
//	sources, _ := files.NewDiscovery("").FindSourceFiles(cfg.Paths.RecordsDir)
//	n := dataprocessing.NewNormalizer(cfg.Analysis.EntryPolicy, logger)
//	ing, err := n.Ingest(ctx, sources, metrics)
//	series := dataprocessing.BuildSeries(ing.Records, cfg.Analysis.Duplicates)
//	sectors, err := dataprocessing.LoadSectorFile(cfg.Paths.SectorFile)
//
// # Error Handling
//
// Per-source problems (malformed names, malformed entries, empty bodies) are
// logged at WARN and skipped. Ingest fails only with ErrNoDataAvailable, when
// not a single record was read.
package dataprocessing
