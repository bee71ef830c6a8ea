package attrs

import "github.com/bgpfix/bgpstream/nlri"

// ReadPrefixes appends NLRI prefixes parsed from src to dst.
// ipv6 selects the prefix address family, addpath enables RFC7911 parsing.
func ReadPrefixes(dst []nlri.NLRI, src []byte, ipv6, addpath bool) ([]nlri.NLRI, error) {
	for len(src) > 0 {
		l := len(dst)
		if cap(dst) > l {
			dst = dst[:l+1]
		} else {
			dst = append(dst, nlri.NLRI{})
		}
		p := &dst[l]

		n, err := p.Unmarshal(src, ipv6, addpath)
		if err != nil {
			return dst, err
		}
		src = src[n:]
	}
	return dst, nil
}

// WritePrefixes appends the wire representation of src to dst.
func WritePrefixes(dst []byte, src []nlri.NLRI, addpath bool) []byte {
	for i := range src {
		dst = src[i].Marshal(dst, addpath)
	}
	return dst
}
