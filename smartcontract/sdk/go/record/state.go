package record

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

var (
	// ErrMalformedRecord is returned when record bytes do not match the fixed layout of the record kind.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrRecordSizeMismatch is returned when an encoded record does not have the fixed size of its kind.
	ErrRecordSizeMismatch = errors.New("encoded record size mismatch")

	ErrUnknownRecordKind = errors.New("unknown record kind")
)

// RecordKind identifies a record schema. The kind is chosen by the operator and is never written
// on chain; the account only holds the positional field layout.
type RecordKind string

const (
	RecordKindAll2All    RecordKind = "all2all"
	RecordKindPacketTest RecordKind = "packet-test"
	RecordKindWeighting  RecordKind = "weighting"
)

var RecordKinds = []RecordKind{RecordKindAll2All, RecordKindPacketTest, RecordKindWeighting}

func ParseRecordKind(s string) (RecordKind, error) {
	for _, k := range RecordKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRecordKind, s)
}

// Record is a fixed-size configuration record stored after the record program metadata.
type Record interface {
	Kind() RecordKind
	// Size is the exact number of bytes the record occupies on chain.
	Size() int
	bin.BinaryMarshaler
	bin.BinaryUnmarshaler
}

// NewRecord returns a zero-value record of the given kind.
func NewRecord(kind RecordKind) (Record, error) {
	switch kind {
	case RecordKindAll2All:
		return &All2AllConfig{}, nil
	case RecordKindPacketTest:
		return &PacketTestConfig{}, nil
	case RecordKindWeighting:
		return &WeightingConfig{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecordKind, kind)
	}
}

// AccountSize is the full data size of a record account holding r.
func AccountSize(r Record) int {
	return RecordMetaDataSize + r.Size()
}

// Encode serializes r into exactly r.Size() bytes.
func Encode(r Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.MarshalWithEncoder(bin.NewBorshEncoder(&buf)); err != nil {
		return nil, fmt.Errorf("failed to encode %s record: %w", r.Kind(), err)
	}
	if buf.Len() != r.Size() {
		return nil, fmt.Errorf("%w: %s record encoded to %d bytes, want %d", ErrRecordSizeMismatch, r.Kind(), buf.Len(), r.Size())
	}
	return buf.Bytes(), nil
}

// Decode deserializes data into r. The input must be exactly r.Size() bytes.
func Decode(data []byte, r Record) error {
	if len(data) != r.Size() {
		return fmt.Errorf("%w: %s record is %d bytes, got %d", ErrMalformedRecord, r.Kind(), r.Size(), len(data))
	}
	if err := r.UnmarshalWithDecoder(bin.NewBorshDecoder(data)); err != nil {
		if errors.Is(err, ErrMalformedRecord) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return nil
}

const (
	ReservedSize = 16

	All2AllConfigSize    = 2 + 2 + ReservedSize     // 20
	PacketTestConfigSize = 2 + 1 + 2 + ReservedSize // 21
	WeightingConfigSize  = 1 + 8                    // 9
)

// All2AllConfig configures the all-to-all broadcast test.
type All2AllConfig struct {
	// Interval between broadcasts, in slots.
	TestIntervalSlots uint16 `json:"test_interval_slots"` // 2

	// Packet size above the header size.
	PacketSize uint16 `json:"packet_size"` // 2

	// Reserved for future use.
	Reserved [ReservedSize]uint8 `json:"-"` // 16
}

func NewAll2AllConfig(testIntervalSlots, packetSize uint16) *All2AllConfig {
	return &All2AllConfig{
		TestIntervalSlots: testIntervalSlots,
		PacketSize:        packetSize,
	}
}

func (c *All2AllConfig) Kind() RecordKind { return RecordKindAll2All }
func (c *All2AllConfig) Size() int        { return All2AllConfigSize }

func (c All2AllConfig) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint16(c.TestIntervalSlots, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint16(c.PacketSize, bin.LE); err != nil {
		return err
	}
	return enc.WriteBytes(c.Reserved[:], false)
}

func (c *All2AllConfig) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if c.TestIntervalSlots, err = dec.ReadUint16(bin.LE); err != nil {
		return err
	}
	if c.PacketSize, err = dec.ReadUint16(bin.LE); err != nil {
		return err
	}
	return readReserved(dec, c.Reserved[:])
}

// PacketTestConfig configures the packet verification test.
type PacketTestConfig struct {
	TestIntervalSlots uint16 `json:"test_interval_slots"` // 2

	// Whether receivers verify packet contents.
	Verify bool `json:"verify"` // 1

	// Extra bytes appended to each packet.
	PacketExtraSize uint16 `json:"packet_extra_size"` // 2

	Reserved [ReservedSize]uint8 `json:"-"` // 16
}

func NewPacketTestConfig(testIntervalSlots uint16, verify bool, packetExtraSize uint16) *PacketTestConfig {
	return &PacketTestConfig{
		TestIntervalSlots: testIntervalSlots,
		Verify:            verify,
		PacketExtraSize:   packetExtraSize,
	}
}

func (c *PacketTestConfig) Kind() RecordKind { return RecordKindPacketTest }
func (c *PacketTestConfig) Size() int        { return PacketTestConfigSize }

func (c PacketTestConfig) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint16(c.TestIntervalSlots, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteBool(c.Verify); err != nil {
		return err
	}
	if err := enc.WriteUint16(c.PacketExtraSize, bin.LE); err != nil {
		return err
	}
	return enc.WriteBytes(c.Reserved[:], false)
}

func (c *PacketTestConfig) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if c.TestIntervalSlots, err = dec.ReadUint16(bin.LE); err != nil {
		return err
	}
	if c.Verify, err = readStrictBool(dec); err != nil {
		return err
	}
	if c.PacketExtraSize, err = dec.ReadUint16(bin.LE); err != nil {
		return err
	}
	return readReserved(dec, c.Reserved[:])
}

type WeightingMode uint8

const (
	WeightingModeStatic  WeightingMode = 0
	WeightingModeDynamic WeightingMode = 1
)

func (m WeightingMode) String() string {
	switch m {
	case WeightingModeStatic:
		return "static"
	case WeightingModeDynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

func ParseWeightingMode(s string) (WeightingMode, error) {
	switch s {
	case "static":
		return WeightingModeStatic, nil
	case "dynamic":
		return WeightingModeDynamic, nil
	default:
		return 0, fmt.Errorf("invalid weighting mode %q, must be one of: static, dynamic", s)
	}
}

// WeightingConfig selects how stake weights are applied and the smoothing time constant of the
// dynamic mode. It has no reserved block.
type WeightingConfig struct {
	Mode               WeightingMode `json:"mode"`                 // 1
	TimeConstantMillis uint64        `json:"time_constant_millis"` // 8
}

func NewWeightingConfig(mode WeightingMode, timeConstantMillis uint64) *WeightingConfig {
	return &WeightingConfig{Mode: mode, TimeConstantMillis: timeConstantMillis}
}

func (c *WeightingConfig) Kind() RecordKind { return RecordKindWeighting }
func (c *WeightingConfig) Size() int        { return WeightingConfigSize }

func (c WeightingConfig) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint8(uint8(c.Mode)); err != nil {
		return err
	}
	return enc.WriteUint64(c.TimeConstantMillis, bin.LE)
}

func (c *WeightingConfig) UnmarshalWithDecoder(dec *bin.Decoder) error {
	mode, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	c.Mode = WeightingMode(mode)
	c.TimeConstantMillis, err = dec.ReadUint64(bin.LE)
	return err
}

func readStrictBool(dec *bin.Decoder) (bool, error) {
	b, err := dec.ReadUint8()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: invalid bool byte %d", ErrMalformedRecord, b)
	}
}

// readReserved copies the reserved block verbatim so that decode then encode preserves it.
func readReserved(dec *bin.Decoder, dst []byte) error {
	b, err := dec.ReadNBytes(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// RecordMetadata is the record program header in front of the record bytes.
type RecordMetadata struct {
	Version   uint8
	Authority [32]byte
}

// DeserializeRecordAccount splits record account data into its metadata and the record. Only the
// bytes after the metadata are handed to the record decoder, and their length must match the record
// kind exactly.
func DeserializeRecordAccount(data []byte, r Record) (*RecordMetadata, error) {
	if len(data) < RecordMetaDataSize {
		return nil, fmt.Errorf("%w: account data too short: %d bytes", ErrMalformedRecord, len(data))
	}
	var meta RecordMetadata
	meta.Version = data[0]
	copy(meta.Authority[:], data[1:RecordMetaDataSize])

	if err := Decode(data[RecordMetaDataSize:], r); err != nil {
		return nil, err
	}
	return &meta, nil
}
