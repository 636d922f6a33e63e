package ndarray

// Payload is image data in one of three representations:
//
//	*Dense       one dtype, shape (h, w) or (h, w, c)
//	*ChannelMap  named planes, one dtype per plane
//	*Record      structured array, one field per channel
//
// The set is closed; a type switch over these three is exhaustive.
type Payload interface {
	payload()
}

func (*Dense) payload()      {}
func (*ChannelMap) payload() {}
func (*Record) payload()     {}
