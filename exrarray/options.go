package exrarray

import (
	"github.com/mrjoshuak/go-openexr/exr"

	"github.com/mrjoshuak/go-exrarray/internal/binding"
)

// Options configures a read or write. Fields that only apply to one
// direction are ignored by the other.
type Options struct {
	// ChannelNames selects (read) or assigns (write) channel names, in
	// array axis order. Empty means "use Conventions".
	ChannelNames []string

	// Conventions supplies default names. Nil means DefaultConventions.
	Conventions *Conventions

	// Compression is passed to the EXR writer. Defaults to ZIP.
	Compression exr.Compression

	// LineOrder is passed to the EXR writer. Defaults to increasing Y.
	LineOrder exr.LineOrder

	// Attributes are added to the written header as given. Structural
	// attributes (channels, dataWindow, compression, ...) are rejected.
	Attributes []*exr.Attribute

	// Owner and Comments are stored as the standard owner and comments
	// attributes when non-empty.
	Owner    string
	Comments string

	// Mmap reads through a memory mapping.
	Mmap bool
}

// Option modifies Options.
type Option func(*Options)

// WithChannelNames sets explicit channel names.
func WithChannelNames(names ...string) Option {
	return func(o *Options) {
		o.ChannelNames = append([]string(nil), names...)
	}
}

// WithLetters sets explicit channel names from one-letter codes, e.g. "BGR".
func WithLetters(codes string) Option {
	return func(o *Options) {
		o.ChannelNames = Letters(codes)
	}
}

// WithConventions uses c instead of DefaultConventions.
func WithConventions(c *Conventions) Option {
	return func(o *Options) {
		o.Conventions = c
	}
}

// WithCompression sets the compression of written files.
func WithCompression(c exr.Compression) Option {
	return func(o *Options) {
		o.Compression = c
	}
}

// WithLineOrder sets the line order of written files.
func WithLineOrder(lo exr.LineOrder) Option {
	return func(o *Options) {
		o.LineOrder = lo
	}
}

// WithAttribute adds a header attribute to written files.
func WithAttribute(attr *exr.Attribute) Option {
	return func(o *Options) {
		o.Attributes = append(o.Attributes, attr)
	}
}

// WithOwner records the creator of written files.
func WithOwner(owner string) Option {
	return func(o *Options) {
		o.Owner = owner
	}
}

// WithComments records a free-form description in written files.
func WithComments(comments string) Option {
	return func(o *Options) {
		o.Comments = comments
	}
}

// WithMmap reads files through a memory mapping.
func WithMmap() Option {
	return func(o *Options) {
		o.Mmap = true
	}
}

func newOptions(opts []Option) *Options {
	def := binding.DefaultConfig()
	o := &Options{
		Compression: def.Compression,
		LineOrder:   def.LineOrder,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Conventions == nil {
		o.Conventions = DefaultConventions
	}
	return o
}

func (o *Options) config() binding.Config {
	return binding.Config{
		Compression: o.Compression,
		LineOrder:   o.LineOrder,
		Attributes:  o.Attributes,
		Owner:       o.Owner,
		Comments:    o.Comments,
		Mmap:        o.Mmap,
	}
}
