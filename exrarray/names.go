package exrarray

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mrjoshuak/go-exrarray/ndarray"
)

// Letters splits a string of one-letter channel codes, so Letters("BGR")
// returns [B G R]. It is the short form of a channel name list used by
// OpenCV-style callers.
func Letters(codes string) []string {
	names := make([]string, 0, len(codes))
	for _, r := range codes {
		names = append(names, string(r))
	}
	return names
}

func checkNames(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return errors.New("empty channel name")
		}
		if seen[name] {
			return fmt.Errorf("duplicate channel name %q", name)
		}
		seen[name] = true
	}
	return nil
}

// Resolve returns the channel names for count channels: explicit when
// given, otherwise the entry for count in conv. Explicit names must number
// exactly count and be unique and non-empty.
func Resolve(explicit []string, count int, conv *Conventions) ([]string, error) {
	if len(explicit) == 0 {
		if conv == nil {
			conv = DefaultConventions
		}
		return conv.Names(count)
	}
	if len(explicit) != count {
		return nil, fmt.Errorf("%w: %d names %v for %d channels", ErrChannelCountMismatch, len(explicit), explicit, count)
	}
	if err := checkNames(explicit); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChannelName, err)
	}
	return append([]string(nil), explicit...), nil
}

// SelectChannels checks that every requested name is available and returns
// the request in its own order. All missing names are reported at once.
func SelectChannels(available, requested []string) ([]string, error) {
	have := make(map[string]bool, len(available))
	for _, name := range available {
		have[name] = true
	}
	var missing []string
	for _, name := range requested {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v (file has %v, requested %v)", ErrChannelNotFound, missing, available, requested)
	}
	return append([]string(nil), requested...), nil
}

// channel pairs a name with its plane on the way to the binding.
type channel struct {
	name  string
	plane *ndarray.Plane
}

// sortChannels puts channels in ascending byte order of their names, the
// order EXR files store them in.
func sortChannels(chs []channel) {
	sort.SliceStable(chs, func(i, j int) bool { return chs[i].name < chs[j].name })
}
