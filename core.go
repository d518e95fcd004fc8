// Package r2t2 is the orchestrator: it wires the container reader, block
// decoder, descriptor table, dataset store and sampler together behind the
// three entry points a UI collaborator drives — open-archive, load-catalog
// (an internal extension; see catalog.Load) and sample-metrics. The core is
// reentered from a single-threaded cooperative message loop, so Core holds
// no internal lock and must not be shared across goroutines.
package r2t2

import (
	"os"

	"github.com/vstojkovic-mongodb/r2t2/catalog"
	"github.com/vstojkovic-mongodb/r2t2/compress"
	"github.com/vstojkovic-mongodb/r2t2/errs"
	"github.com/vstojkovic-mongodb/r2t2/format"
	"github.com/vstojkovic-mongodb/r2t2/ftdc"
	"github.com/vstojkovic-mongodb/r2t2/logx"
	"github.com/vstojkovic-mongodb/r2t2/metric"
	"github.com/vstojkovic-mongodb/r2t2/sample"
	"github.com/vstojkovic-mongodb/r2t2/store"
)

// ArchiveLoaded is the update sent back after a successful OpenArchive.
type ArchiveLoaded struct {
	Start      metric.Instant
	End        metric.Instant
	Transients []int
}

// CatalogLoaded is the update sent back after a successful LoadCatalog.
type CatalogLoaded struct {
	Sections   map[string][]int
	Transients []int
}

// MetricsSampled is the update sent back from SampleMetrics.
type MetricsSampled struct {
	Series map[int][]sample.Point
}

// Core owns the descriptor table and dataset store for one open archive.
// Legal usage from the outside is open -> (load-catalog)? -> sample*; a
// sample call before open is a programming error and returns an empty
// series for every requested id rather than a fault, per the orchestrator's
// ordering contract.
type Core struct {
	table   *metric.Table
	store   *store.Store
	decoder compress.Decompressor
	log     *logx.Logger

	opened bool
}

// NewCore returns an orchestrator with an empty descriptor table and
// dataset store.
func NewCore() *Core {
	return &Core{
		table:   metric.NewTable(),
		store:   store.New(),
		decoder: compress.NewZlibDecompressor(),
		log:     logx.Default,
	}
}

// OpenArchive clears any previously loaded archive, then ingests path
// container by container: metadata containers are skipped once parsed
// (their fields aren't part of the current surface), data containers are
// decoded and appended to the dataset store. End of stream at a container
// boundary is the normal, successful end of ingestion; any other error
// aborts ingestion and leaves the store exactly as the last fully
// successful append left it.
func (c *Core) OpenArchive(path string) (ArchiveLoaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return ArchiveLoaded{}, errs.Wrap(errs.KindIO, "opening archive", err)
	}
	defer f.Close()

	c.store.Clear()
	c.table = metric.NewTable()
	c.opened = false

	rd := ftdc.NewReader(f)
	for {
		kind, doc, err := rd.Next()
		if err != nil {
			if errs.Is(err, errs.KindEndOfStream) {
				break
			}
			c.log.Errorf("archive ingestion aborted: %v", err)
			return ArchiveLoaded{}, err
		}

		switch kind {
		case format.ContainerMetadata:
			if _, err := ftdc.ExtractMetadata(doc); err != nil {
				return ArchiveLoaded{}, err
			}
		default:
			block, err := ftdc.ExtractData(doc, c.decoder)
			if err != nil {
				c.log.Errorf("block decode aborted: %v", err)
				return ArchiveLoaded{}, err
			}
			appendErr := c.store.AppendBlock(block, c.table)
			block.Release()
			if appendErr != nil {
				return ArchiveLoaded{}, appendErr
			}
		}
	}

	c.opened = true

	var start, end metric.Instant
	if s, ok := c.store.FirstTimestamp(); ok {
		start = s
	}
	if e, ok := c.store.LastTimestamp(); ok {
		end = e
	}

	return ArchiveLoaded{Start: start, End: end, Transients: append([]int(nil), c.table.Transients()...)}, nil
}

// LoadCatalog parses and validates the catalog document at path, then
// replaces the descriptor table's sections, reclassifying any previously
// observed key not covered by the new catalog back to a transient. Catalog
// I/O or parse errors surface to the caller but never touch the dataset
// store.
func (c *Core) LoadCatalog(path string) (CatalogLoaded, error) {
	order, sections, err := catalog.LoadFile(path)
	if err != nil {
		c.log.Warnf("catalog load failed: %v", err)
		return CatalogLoaded{}, err
	}

	c.table.LoadCatalog(order, sections)

	names, ids := c.table.Sections()
	out := make(map[string][]int, len(names))
	for i, name := range names {
		out[name] = ids[i]
	}

	return CatalogLoaded{Sections: out, Transients: append([]int(nil), c.table.Transients()...)}, nil
}

// SampleMetrics returns a downsampled (time, value) series per requested
// id. Called before a successful OpenArchive, or with ids the table has no
// descriptor for, it returns an empty series for those ids rather than
// faulting.
func (c *Core) SampleMetrics(ids []int, window [2]metric.Instant, targetPoints int) MetricsSampled {
	if !c.opened {
		c.log.Warnf("sample-metrics received before a successful open-archive")
		empty := make(map[int][]sample.Point, len(ids))
		for _, id := range ids {
			empty[id] = nil
		}
		return MetricsSampled{Series: empty}
	}

	series := sample.Sample(c.table, c.store, ids, window[0], window[1], targetPoints)
	return MetricsSampled{Series: series}
}
