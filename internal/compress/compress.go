package compress

import "fmt"

// Compress encodes cache payloads.
type Compress interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

const (
	NameNop    = "none"
	NameGZip   = "gzip"
	NameBrotli = "brotli"
	NameLZ4    = "lz4"
)

// Names lists the supported codecs.
var Names = []any{NameNop, NameGZip, NameBrotli, NameLZ4}

// New returns the codec registered under name. An empty name is Nop.
func New(name string) (Compress, error) {
	switch name {
	case "", NameNop:
		return NewNop(), nil
	case NameGZip:
		return NewGZip(), nil
	case NameBrotli:
		return NewBrotli(), nil
	case NameLZ4:
		return NewLZ4(), nil
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}
}
