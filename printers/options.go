package printers

// options contains common display options shared by all printers
type options struct {
	ShowTimestamp     bool
	ShowSourceAddress bool
	ShowFailuresOnly  bool
}

// Option configures any of the printers in this package.
type Option func(*options)

// WithTimestamp enables timestamp display in printer output
func WithTimestamp() Option {
	return func(o *options) {
		o.ShowTimestamp = true
	}
}

// WithSourceAddress enables source address display in printer output
func WithSourceAddress() Option {
	return func(o *options) {
		o.ShowSourceAddress = true
	}
}

// WithFailuresOnly configures the printer to only show failed probes
func WithFailuresOnly() Option {
	return func(o *options) {
		o.ShowFailuresOnly = true
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
