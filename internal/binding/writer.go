package binding

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/mrjoshuak/go-openexr/exrmeta"
	"github.com/mrjoshuak/go-openexr/half"
	log "github.com/sirupsen/logrus"

	"github.com/mrjoshuak/go-exrarray/ndarray"
)

// Writer writes one scanline image. Pixels go to a temporary file in the
// destination directory which is renamed over the destination on Close, so
// a failed write never leaves a truncated file at path.
type Writer struct {
	path     string
	file     *os.File
	header   *exr.Header
	width    int
	height   int
	channels []Channel
	written  bool
	closed   bool
}

// Create validates h and cfg, builds the EXR header and opens the temporary
// output file. Channels are stored in the order given; callers sort them.
func Create(path string, h Header, cfg Config) (*Writer, error) {
	if h.Width <= 0 || h.Height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidHeader, h.Width, h.Height)
	}
	if len(h.Channels) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidHeader)
	}

	eh := exr.NewScanlineHeader(h.Width, h.Height)
	eh.SetCompression(cfg.Compression)
	eh.SetLineOrder(cfg.LineOrder)
	for _, attr := range cfg.Attributes {
		if attr == nil {
			continue
		}
		if IsStructural(attr.Name) {
			return nil, fmt.Errorf("%w: attribute %q is managed by the writer", ErrInvalidHeader, attr.Name)
		}
		eh.Set(attr)
	}
	if cfg.Owner != "" {
		exrmeta.SetOwner(eh, cfg.Owner)
	}
	if cfg.Comments != "" {
		exrmeta.SetComments(eh, cfg.Comments)
	}

	cl := exr.NewChannelList()
	for _, ch := range h.Channels {
		pt, err := PixelType(ch.DType)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", ch.Name, err)
		}
		if ch.Name == "" {
			return nil, fmt.Errorf("%w: empty channel name", ErrInvalidHeader)
		}
		if ch.Subsampled() {
			return nil, fmt.Errorf("%w: channel %q is subsampled", ErrInvalidHeader, ch.Name)
		}
		if !cl.Add(exr.NewChannel(ch.Name, pt)) {
			return nil, fmt.Errorf("%w: duplicate channel %q", ErrInvalidHeader, ch.Name)
		}
	}
	eh.SetChannels(cl)

	f, err := createTemp(path)
	if err != nil {
		return nil, err
	}
	log.Debugf("binding: writing %s via %s (%dx%d, %d channels, %v)",
		path, f.Name(), h.Width, h.Height, len(h.Channels), cfg.Compression)

	return &Writer{
		path:     path,
		file:     f,
		header:   eh,
		width:    h.Width,
		height:   h.Height,
		channels: append([]Channel(nil), h.Channels...),
	}, nil
}

// WritePixels encodes one plane per header channel. Every channel must be
// present with the header's dtype and the image dimensions. On error the
// writer is aborted.
func (w *Writer) WritePixels(planes map[string]*ndarray.Plane) (err error) {
	if w.closed {
		return errors.New("binding: write on closed writer")
	}
	if w.written {
		return errors.New("binding: pixels already written")
	}
	defer func() {
		if err != nil {
			w.Abort()
		}
	}()

	fb := exr.NewFrameBuffer()
	for _, ch := range w.channels {
		p := planes[ch.Name]
		if p == nil {
			return fmt.Errorf("%w: no data for channel %q", ErrInvalidHeader, ch.Name)
		}
		if p.DType() != ch.DType {
			return fmt.Errorf("%w: channel %q is %v, header says %v", ndarray.ErrDTypeMismatch, ch.Name, p.DType(), ch.DType)
		}
		if p.Height() != w.height || p.Width() != w.width {
			return fmt.Errorf("%w: channel %q is %dx%d, image is %dx%d",
				ndarray.ErrShapeMismatch, ch.Name, p.Height(), p.Width(), w.height, w.width)
		}
		switch data := p.Data().(type) {
		case []half.Half:
			fb.Set(ch.Name, exr.NewSliceFromHalf(data, w.width, w.height))
		case []float32:
			fb.Set(ch.Name, exr.NewSliceFromFloat32(data, w.width, w.height))
		case []uint32:
			fb.Set(ch.Name, exr.NewSliceFromUint32(data, w.width, w.height))
		}
	}

	sw, err := exr.NewScanlineWriter(w.file, w.header)
	if err != nil {
		return err
	}
	sw.SetFrameBuffer(fb)
	dw := w.header.DataWindow()
	if err := sw.WritePixels(int(dw.Min.Y), int(dw.Max.Y)); err != nil {
		return err
	}
	if err := sw.Close(); err != nil {
		return err
	}
	w.written = true
	return nil
}

// Close commits the file: the temporary file is synced, closed and renamed
// to the destination. An existing destination keeps its permission bits.
// Closing before WritePixels succeeded discards the output and returns an
// error.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	if !w.written {
		w.Abort()
		return errors.New("binding: writer closed before pixels were written")
	}
	w.closed = true

	tmp := w.file.Name()
	if err := w.file.Sync(); err != nil && !errors.Is(err, os.ErrClosed) {
		w.file.Close()
		os.Remove(tmp)
		return err
	}
	if fi, err := os.Stat(w.path); err == nil {
		if err := w.file.Chmod(fi.Mode().Perm()); err != nil && !errors.Is(err, os.ErrClosed) {
			w.file.Close()
			os.Remove(tmp)
			return err
		}
	}
	if err := w.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, w.path); err != nil {
		os.Remove(tmp)
		return err
	}
	log.Debugf("binding: committed %s", w.path)
	return nil
}

// Abort discards the output. It is safe to call more than once and after
// Close.
func (w *Writer) Abort() {
	if w.closed {
		return
	}
	w.closed = true
	tmp := w.file.Name()
	w.file.Close()
	os.Remove(tmp)
	log.Debugf("binding: aborted write of %s", w.path)
}

// createTemp opens a new hidden file next to path. It is created with mode
// 0666 so the process umask applies, as with os.Create.
func createTemp(path string) (*os.File, error) {
	dir, base := filepath.Split(path)
	for range 100 {
		name := filepath.Join(dir, "."+base+"."+strconv.FormatUint(rand.Uint64(), 36)+".tmp")
		f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return f, err
	}
	return nil, fmt.Errorf("binding: no free temporary name for %s", path)
}
