package binding

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/mrjoshuak/go-openexr/exrmeta"
	"github.com/mrjoshuak/go-openexr/half"
	log "github.com/sirupsen/logrus"

	"github.com/mrjoshuak/go-exrarray/ndarray"
)

// Reader gives access to the first part of an EXR file.
type Reader struct {
	path   string
	file   *exr.File
	header *exr.Header
	info   Header
}

// Open opens path and parses its header. A missing file is ErrFileNotFound;
// deep files are ErrUnsupportedFile. Multi-part files expose their first part.
// Subsampled channels are listed with their sampling but cannot be read.
func Open(path string, cfg Config) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}

	var (
		f   *exr.File
		err error
	)
	if cfg.Mmap {
		f, err = exr.OpenFileMmap(path)
	} else {
		f, err = exr.OpenFile(path)
	}
	if err != nil {
		return nil, err
	}

	r := &Reader{path: path, file: f}
	if err := r.parseHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) parseHeader() error {
	if r.file.IsDeep() {
		return fmt.Errorf("%w: %s holds deep data", ErrUnsupportedFile, r.path)
	}
	h := r.file.Header(0)
	if h == nil {
		return fmt.Errorf("%w: %s has no header", ErrUnsupportedFile, r.path)
	}
	r.header = h

	dw := h.DataWindow()
	info := Header{
		Width:       int(dw.Width()),
		Height:      int(dw.Height()),
		Compression: h.Compression(),
		Tiled:       h.IsTiled(),
		MultiPart:   r.file.IsMultiPart(),
		Owner:       exrmeta.Owner(h),
		Comments:    exrmeta.Comments(h),
	}
	if info.MultiPart {
		log.Debugf("binding: %s has %d parts, reading part 0", r.path, r.file.NumParts())
	}

	if cl := h.Channels(); cl != nil {
		for _, ch := range cl.Channels() {
			dt, err := DTypeOf(ch.Type)
			if err != nil {
				return fmt.Errorf("channel %q: %w", ch.Name, err)
			}
			info.Channels = append(info.Channels, Channel{
				Name:      ch.Name,
				DType:     dt,
				XSampling: int(ch.XSampling),
				YSampling: int(ch.YSampling),
			})
		}
	}
	for _, attr := range h.Attributes() {
		if !IsStructural(attr.Name) {
			info.Attributes = append(info.Attributes, attr.Name)
		}
	}
	r.info = info
	return nil
}

// Header returns the parsed header.
func (r *Reader) Header() Header {
	return r.info
}

// ReadPixels decodes the named channels. Names absent from the header fail
// with exr.ErrChannelNotFound; subsampled channels fail with
// ndarray.ErrShapeMismatch.
func (r *Reader) ReadPixels(names []string) (map[string]*ndarray.Plane, error) {
	all := r.header.Channels()
	cl := exr.NewChannelList()
	for _, name := range names {
		var ch *exr.Channel
		if all != nil {
			ch = all.Get(name)
		}
		if ch == nil {
			return nil, fmt.Errorf("%w: %q", exr.ErrChannelNotFound, name)
		}
		if ch.XSampling != 1 || ch.YSampling != 1 {
			return nil, fmt.Errorf("%w: channel %q is subsampled %dx%d",
				ndarray.ErrShapeMismatch, ch.Name, ch.XSampling, ch.YSampling)
		}
		cl.Add(*ch)
	}
	if cl.Len() == 0 {
		return map[string]*ndarray.Plane{}, nil
	}

	dw := r.header.DataWindow()
	fb, _ := exr.AllocateChannels(cl, dw)
	if err := r.readPixels(fb); err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.path, err)
	}
	log.Debugf("binding: read %d channels from %s", cl.Len(), r.path)

	planes := make(map[string]*ndarray.Plane, cl.Len())
	for i := 0; i < cl.Len(); i++ {
		ch := cl.At(i)
		p, err := decodePlane(fb.Get(ch.Name), dw)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", ch.Name, err)
		}
		planes[ch.Name] = p
	}
	return planes, nil
}

// readPixels reads part 0 with the reader matching its layout.
func (r *Reader) readPixels(fb *exr.FrameBuffer) error {
	h := r.header
	mpi := exr.NewMultiPartInputFile(r.file)
	if h.IsTiled() {
		tr, err := mpi.TiledReader(0)
		if err != nil {
			return err
		}
		tr.SetFrameBuffer(fb)
		return tr.ReadTiles(0, 0, h.NumXTiles(0)-1, h.NumYTiles(0)-1)
	}

	sr, err := mpi.ScanlineReader(0)
	if err != nil {
		return err
	}
	sr.SetFrameBuffer(fb)
	dw := h.DataWindow()
	return sr.ReadPixels(int(dw.Min.Y), int(dw.Max.Y))
}

// decodePlane copies a frame buffer slice into a typed plane. Slices are
// addressed in data window coordinates.
func decodePlane(s *exr.Slice, dw exr.Box2i) (*ndarray.Plane, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: no slice", ndarray.ErrShapeMismatch)
	}
	width, height := int(dw.Width()), int(dw.Height())
	minX, minY := int(dw.Min.X), int(dw.Min.Y)

	switch s.Type {
	case exr.PixelTypeHalf:
		data := make([]half.Half, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				data[y*width+x] = s.GetHalf(x+minX, y+minY)
			}
		}
		return ndarray.PlaneOf(data, height, width)
	case exr.PixelTypeFloat:
		data := make([]float32, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				data[y*width+x] = s.GetFloat32(x+minX, y+minY)
			}
		}
		return ndarray.PlaneOf(data, height, width)
	case exr.PixelTypeUint:
		data := make([]uint32, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				data[y*width+x] = s.GetUint32(x+minX, y+minY)
			}
		}
		return ndarray.PlaneOf(data, height, width)
	}
	return nil, fmt.Errorf("%w: pixel type %v", ndarray.ErrUnsupportedDType, s.Type)
}

// Close releases the file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}
