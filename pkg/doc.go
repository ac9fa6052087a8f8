// Package pkg provides the core libraries for cardpress card generation.
//
// # Overview
//
// Cardpress turns a CSV of songs into a double-sided, print-ready PDF:
// a scannable code linking to the song on the front of each card, and
// artist, title and year on the back. The pkg directory is organized
// into three main areas:
//
//  1. Domain logic - dataset handling, grid geometry, text fitting,
//     code generation and page composition
//  2. Infrastructure - HTTP caching/retry, image metadata, fonts,
//     errors and observability hooks
//  3. Orchestration - the pipeline tying the stages together
//
// # Architecture
//
// The typical data flow through cardpress:
//
//	CSV dataset
//	     ↓
//	[deck] package (parse, normalize, deduplicate)
//	     ↓
//	[linkfix] package (optional link and year repair)
//	     ↓
//	[layout] package (page grid geometry)
//	     ↓
//	[render] package (front/back composition via [qrgen] and [textfit])
//	     ↓
//	PDF output
//
// # Quick Start
//
// Generate a card PDF from a dataset:
//
//	import (
//	    "context"
//	    "github.com/cardpress/cardpress/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    DataPath:   "songs.csv",
//	    OutputPath: "cards.pdf",
//	})
//
// # Main Packages
//
//   - [deck]: CSV ingestion, column aliasing, deduplication, write-back
//   - [linkfix]: strategy chain repairing links and years
//   - [layout]: page/cell geometry for fixed and background grids
//   - [textfit]: width- and height-aware font size fitting
//   - [qrgen]: QR raster generation with optional icon overlay
//   - [render]: page pair sequencing and drawing
//   - [pipeline]: end-to-end orchestration used by the CLI
package pkg
