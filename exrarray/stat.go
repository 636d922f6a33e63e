package exrarray

import (
	"fmt"

	"github.com/mrjoshuak/go-openexr/exr"

	"github.com/mrjoshuak/go-exrarray/internal/binding"
	"github.com/mrjoshuak/go-exrarray/ndarray"
)

// ChannelInfo describes one stored channel. Subsampled channels are
// listed but cannot be read.
type ChannelInfo struct {
	Name      string        `json:"name"`
	DType     ndarray.DType `json:"dtype"`
	XSampling int           `json:"xSampling"`
	YSampling int           `json:"ySampling"`
}

// Subsampled reports whether the channel is stored below full resolution.
func (c ChannelInfo) Subsampled() bool {
	return c.XSampling > 1 || c.YSampling > 1
}

// Info summarizes an EXR file without decoding pixels.
type Info struct {
	Path        string          `json:"path"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Compression exr.Compression `json:"-"`
	Codec       string          `json:"compression"`
	Tiled       bool            `json:"tiled"`
	MultiPart   bool            `json:"multiPart"`
	Channels    []ChannelInfo   `json:"channels"`
	Attributes  []string        `json:"attributes,omitempty"`
	Owner       string          `json:"owner,omitempty"`
	Comments    string          `json:"comments,omitempty"`
}

// Names returns the channel names in file order.
func (i *Info) Names() []string {
	names := make([]string, len(i.Channels))
	for n, ch := range i.Channels {
		names[n] = ch.Name
	}
	return names
}

// Stat reads the header of an EXR file.
func Stat(path string, opts ...Option) (*Info, error) {
	o := newOptions(opts)
	r, err := binding.Open(path, o.config())
	if err != nil {
		return nil, fmt.Errorf("exrarray: stat %s: %w", path, err)
	}
	defer r.Close()

	h := r.Header()
	info := &Info{
		Path:        path,
		Width:       h.Width,
		Height:      h.Height,
		Compression: h.Compression,
		Codec:       h.Compression.String(),
		Tiled:       h.Tiled,
		MultiPart:   h.MultiPart,
		Attributes:  h.Attributes,
		Owner:       h.Owner,
		Comments:    h.Comments,
	}
	for _, ch := range h.Channels {
		info.Channels = append(info.Channels, ChannelInfo{
			Name:      ch.Name,
			DType:     ch.DType,
			XSampling: ch.XSampling,
			YSampling: ch.YSampling,
		})
	}
	return info, nil
}
