package exrarray

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/mrjoshuak/go-exrarray/internal/binding"
	"github.com/mrjoshuak/go-exrarray/ndarray"
)

// Write stores payload in an EXR file at path.
//
//   - *ndarray.Dense is split along its last axis. Channel names come from
//     WithChannelNames/WithLetters or from the conventions table.
//   - *ndarray.ChannelMap stores every plane under its key with its own
//     dtype. All planes must share one shape.
//   - *ndarray.Record stores every field as a channel.
//
// EXR files keep channels sorted by name. A record whose fields are not
// sorted is accepted, but ReadStructured returns the fields sorted.
//
// All validation happens before anything is written. The file is written
// to a temporary name and renamed into place, so an error never leaves a
// partial file at path; an existing file at path is replaced only on
// success.
func Write(path string, payload ndarray.Payload, opts ...Option) error {
	o := newOptions(opts)
	chs, err := decompose(payload, o)
	if err != nil {
		return fmt.Errorf("exrarray: write %s: %w", path, err)
	}
	if err := writeChannels(path, chs, o); err != nil {
		return fmt.Errorf("exrarray: write %s: %w", path, err)
	}
	return nil
}

// ImWrite stores a dense image. A 2-D array is a single channel.
func ImWrite(path string, img *ndarray.Dense, opts ...Option) error {
	if img == nil {
		return fmt.Errorf("exrarray: write %s: %w: nil image", path, ErrShapeMismatch)
	}
	return Write(path, img, opts...)
}

// decompose turns any payload into named planes.
func decompose(payload ndarray.Payload, o *Options) ([]channel, error) {
	switch p := payload.(type) {
	case *ndarray.Dense:
		if p == nil {
			break
		}
		return decomposeDense(p, o)
	case *ndarray.ChannelMap:
		if p == nil {
			break
		}
		return decomposeMap(p)
	case *ndarray.Record:
		if p == nil {
			break
		}
		if !p.IsSorted() {
			log.Debugf("exrarray: record fields %v will be stored sorted", p.Names())
		}
		return decomposeMap(p.ChannelMap())
	}
	return nil, fmt.Errorf("%w: no data to write", ErrShapeMismatch)
}

func decomposeDense(d *ndarray.Dense, o *Options) ([]channel, error) {
	names, err := Resolve(o.ChannelNames, d.Channels(), o.Conventions)
	if err != nil {
		return nil, err
	}
	planes := d.Split()
	chs := make([]channel, len(names))
	for i, name := range names {
		chs[i] = channel{name: name, plane: planes[i]}
	}
	return chs, nil
}

func decomposeMap(m *ndarray.ChannelMap) ([]channel, error) {
	names := m.Names()
	if err := checkNames(names); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChannelName, err)
	}
	if _, _, err := m.Shape(); err != nil {
		return nil, err
	}
	chs := make([]channel, len(names))
	for i, name := range names {
		chs[i] = channel{name: name, plane: m.Get(name)}
	}
	return chs, nil
}

// writeChannels sorts the channels, describes them in a header and hands
// header and planes to the binding.
func writeChannels(path string, chs []channel, o *Options) error {
	sortChannels(chs)

	h := binding.Header{
		Height: chs[0].plane.Height(),
		Width:  chs[0].plane.Width(),
	}
	planes := make(map[string]*ndarray.Plane, len(chs))
	for _, ch := range chs {
		h.Channels = append(h.Channels, binding.Channel{Name: ch.name, DType: ch.plane.DType()})
		planes[ch.name] = ch.plane
	}

	w, err := binding.Create(path, h, o.config())
	if err != nil {
		return err
	}
	defer w.Abort()

	if err := w.WritePixels(planes); err != nil {
		return err
	}
	return w.Close()
}
