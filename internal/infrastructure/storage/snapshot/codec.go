package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// DefaultCompressThreshold is the payload size above which buckets are compressed.
const DefaultCompressThreshold = 10 * 1024

// Codec converts snapshots to buckets and back.
type Codec struct {
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int // bytes
}

// NewCodec creates a codec. threshold <= 0 uses DefaultCompressThreshold.
func NewCodec(threshold int) (*Codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}
	return &Codec{encoder: encoder, decoder: decoder, compressThreshold: threshold}, nil
}

// Encode marshals the named buckets of s.
func (c *Codec) Encode(s *Snapshot, names []string) ([]Bucket, error) {
	out := make([]Bucket, 0, len(names))
	for _, name := range names {
		v, err := s.field(name)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		b := Bucket{Name: name, Payload: data, CompressionAlgo: CompressionNone}
		if len(data) > c.compressThreshold {
			b.Payload = c.encoder.EncodeAll(data, nil)
			b.CompressionAlgo = CompressionZstd
		}
		out = append(out, b)
	}
	return out, nil
}

// Decode builds a snapshot from stored buckets. Unknown buckets are ignored.
func (c *Codec) Decode(buckets []Bucket) (*Snapshot, error) {
	s := &Snapshot{Sequences: map[string]int64{}}
	for _, b := range buckets {
		data := b.Payload
		if b.CompressionAlgo == CompressionZstd {
			decompressed, err := c.decoder.DecodeAll(b.Payload, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress %s: %w", b.Name, err)
			}
			data = decompressed
		}
		v, err := s.field(b.Name)
		if err != nil {
			continue
		}
		if err := json.Unmarshal(data, v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", b.Name, err)
		}
	}
	return s, nil
}

// field returns a pointer to the collection stored under name.
func (s *Snapshot) field(name string) (any, error) {
	switch name {
	case BucketProducts:
		return &s.Products, nil
	case BucketComponents:
		return &s.Components, nil
	case BucketOrders:
		return &s.Orders, nil
	case BucketProductionOrders:
		return &s.ProductionOrders, nil
	case BucketLedger:
		return &s.Ledger, nil
	case BucketReturns:
		return &s.Returns, nil
	case BucketSupplierReturns:
		return &s.SupplierReturns, nil
	case BucketCreditNotes:
		return &s.CreditNotes, nil
	case BucketInvoices:
		return &s.Invoices, nil
	case BucketSequences:
		return &s.Sequences, nil
	}
	return nil, fmt.Errorf("unknown bucket %q", name)
}
