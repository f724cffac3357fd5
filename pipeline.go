package bankdata

import (
	"time"

	"github.com/pkg/errors"
)

// Processor runs the remap-then-validate pipeline over every column its
// Registry governs.
type Processor struct {
	Registry *Registry
	Log      Logger
	Stats    Statter
}

// ProcessorOption is a functional option for NewProcessor.
type ProcessorOption func(p *Processor)

// OptProcessorRegistry sets the registry whose tables are applied.
func OptProcessorRegistry(r *Registry) ProcessorOption {
	return func(p *Processor) {
		p.Registry = r
	}
}

// OptProcessorLogger sets the processor's logger.
func OptProcessorLogger(l Logger) ProcessorOption {
	return func(p *Processor) {
		p.Log = l
	}
}

// OptProcessorStatter sets the processor's stats collector.
func OptProcessorStatter(s Statter) ProcessorOption {
	return func(p *Processor) {
		p.Stats = s
	}
}

// NewProcessor returns a Processor using the default registry, logging and
// stats nothing unless configured otherwise.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{
		Registry: DefaultRegistry(),
		Log:      NopLogger{},
		Stats:    NopStatter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessAll canonicalizes ds in place. Governed columns are handled one at a
// time in registry order: the column is remapped and then immediately
// validated. The first SchemaViolation stops the run and is returned (wrapped;
// see AsSchemaViolation). ds is then left partially processed: columns before
// the failing one are canonical, the failing column has been remapped but
// holds the offending values, and later columns are untouched.
//
// Governed columns which the dataset doesn't have are skipped. Columns the
// registry doesn't govern are never touched.
func (p *Processor) ProcessAll(ds *Dataset) error {
	start := time.Now()
	for _, column := range p.Registry.Columns() {
		if !ds.HasColumn(column) {
			p.Log.Debugf("skipping governed column %s: not in dataset", column)
			continue
		}
		n, err := p.Registry.Remap(ds, column)
		if err != nil {
			return errors.Wrapf(err, "remapping %s", column)
		}
		p.Stats.Count("remap.columns", 1, 1, "column:"+column)
		p.Stats.Count("remap.replaced", int64(n), 1, "column:"+column)
		p.Log.Debugf("remapped %d of %d values in %s", n, ds.Len(), column)

		if err := p.Registry.Validate(ds, column); err != nil {
			if sv, ok := err.(*SchemaViolation); ok {
				p.Stats.Count("validate.violations", int64(len(sv.Values)), 1, "column:"+column)
				p.Log.Printf("validation failed: %v", sv)
			}
			return errors.Wrapf(err, "validating %s", column)
		}
	}
	p.Stats.Timing("process.duration", time.Since(start), 1)
	return nil
}

// ProcessAll runs the default registry over ds.
func ProcessAll(ds *Dataset) error {
	return NewProcessor().ProcessAll(ds)
}
