package exrarray

import (
	"fmt"

	"github.com/mrjoshuak/go-exrarray/internal/binding"
	"github.com/mrjoshuak/go-exrarray/ndarray"
)

// Read returns the channels of an EXR file keyed by name, each plane with
// the dtype stored in the file. Without WithChannelNames every channel is
// returned in file order, which is ascending by name. With names, exactly
// those channels are returned in the requested order; a name the file lacks
// is ErrChannelNotFound.
func Read(path string, opts ...Option) (*ndarray.ChannelMap, error) {
	o := newOptions(opts)
	names, planes, err := readChannels(path, o, func(h binding.Header) ([]string, error) {
		if len(o.ChannelNames) == 0 {
			return h.Names(), nil
		}
		return SelectChannels(h.Names(), o.ChannelNames)
	})
	if err != nil {
		return nil, fmt.Errorf("exrarray: read %s: %w", path, err)
	}
	m := ndarray.NewChannelMap()
	for _, name := range names {
		m.Set(name, planes[name])
	}
	return m, nil
}

// ReadStructured returns the channels of an EXR file as a structured array
// with one field per channel. Fields are always in ascending name order, the
// order the file stores them in, even when WithChannelNames asks for another
// order: a record written with sorted fields reads back with an identical
// dtype, and one written with unsorted fields reads back sorted.
func ReadStructured(path string, opts ...Option) (*ndarray.Record, error) {
	m, err := Read(path, opts...)
	if err != nil {
		return nil, err
	}
	r, err := m.Sorted().ToRecord()
	if err != nil {
		return nil, fmt.Errorf("exrarray: read %s: %w", path, err)
	}
	return r, nil
}

// ReadPayload returns a *ndarray.Record when structured is true and a
// *ndarray.ChannelMap otherwise.
func ReadPayload(path string, structured bool, opts ...Option) (ndarray.Payload, error) {
	if structured {
		r, err := ReadStructured(path, opts...)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	m, err := Read(path, opts...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ImRead returns an EXR file as a dense array.
//
// Without WithChannelNames the conventions table picks the names for the
// file's channel count, so an RGB file is returned in R, G, B order rather
// than the stored B, G, R order. With names, those channels are stacked in
// the requested order: WithLetters("BGR") on an RGB file returns the channels
// reversed. Selecting a single channel returns a 2-D array, as does a
// one-channel file read with default names.
//
// A dense array has one dtype. Selecting channels of different dtypes fails
// with ErrDTypeMismatch; use Read for such files.
func ImRead(path string, opts ...Option) (*ndarray.Dense, error) {
	o := newOptions(opts)
	names, planes, err := readChannels(path, o, func(h binding.Header) ([]string, error) {
		requested := o.ChannelNames
		if len(requested) == 0 {
			defaults, err := o.Conventions.Names(len(h.Channels))
			if err != nil {
				return nil, err
			}
			requested = defaults
		}
		names, err := SelectChannels(h.Names(), requested)
		if err != nil {
			return nil, err
		}
		return names, checkCommonDType(h, names)
	})
	if err != nil {
		return nil, fmt.Errorf("exrarray: read %s: %w", path, err)
	}

	if len(names) == 1 {
		return ndarray.FromPlane(planes[names[0]]), nil
	}
	stack := make([]*ndarray.Plane, len(names))
	for i, name := range names {
		stack[i] = planes[name]
	}
	d, err := ndarray.Stack(stack...)
	if err != nil {
		return nil, fmt.Errorf("exrarray: read %s: %w", path, err)
	}
	return d, nil
}

// checkCommonDType fails before any pixel is decoded if the selected
// channels cannot share a dense array.
func checkCommonDType(h binding.Header, names []string) error {
	var first *binding.Channel
	for _, name := range names {
		ch := h.Channel(name)
		if first == nil {
			first = ch
			continue
		}
		if ch.DType != first.DType {
			return fmt.Errorf("%w: channel %q is %v, channel %q is %v; read it as a channel map instead",
				ErrDTypeMismatch, ch.Name, ch.DType, first.Name, first.DType)
		}
	}
	return nil
}

// readChannels opens path, lets choose pick channel names from the header
// and decodes those channels. The file is closed on every path.
func readChannels(path string, o *Options, choose func(binding.Header) ([]string, error)) ([]string, map[string]*ndarray.Plane, error) {
	r, err := binding.Open(path, o.config())
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	names, err := choose(r.Header())
	if err != nil {
		return nil, nil, err
	}
	planes, err := r.ReadPixels(unique(names))
	if err != nil {
		return nil, nil, err
	}
	return names, planes, nil
}

func unique(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
