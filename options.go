package arena

// Option configures an arena at construction.
type Option func(*options)

type options struct {
	backing Backing
}

// WithBacking selects the buffer backing. The default is BackingHeap.
func WithBacking(b Backing) Option {
	return func(o *options) { o.backing = b }
}

func buildOptions(opts []Option) options {
	o := options{backing: BackingHeap}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
