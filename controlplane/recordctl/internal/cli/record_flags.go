package cli

import (
	"fmt"

	"github.com/malbeclabs/recordctl/controlplane/recordctl/internal/lifecycle"
	"github.com/malbeclabs/recordctl/smartcontract/sdk/go/record"
	"github.com/spf13/pflag"
)

const defaultPacketSize = 128

func addRecordKindFlag(fs *pflag.FlagSet) {
	fs.String("record", string(record.RecordKindAll2All), fmt.Sprintf("Record kind %v", record.RecordKinds))
}

func addRecordFlags(fs *pflag.FlagSet) {
	addRecordKindFlag(fs)
	fs.Uint16P("interval", "i", 0, "Interval of test broadcasts, in slots (all2all, packet-test)")
	fs.Uint16("packet-size", defaultPacketSize, "Size of packets to send above the header size (all2all)")
	fs.Bool("verify", false, "Verify packet contents on receipt (packet-test)")
	fs.Uint16("packet-extra-size", 0, "Extra bytes appended to each packet (packet-test)")
	fs.String("mode", "static", "Stake weighting mode, static or dynamic (weighting)")
	fs.Uint64("time-constant-ms", 0, "Smoothing time constant of the dynamic weighting mode, in milliseconds (weighting)")
}

func recordKindFromFlags(fs *pflag.FlagSet) (record.RecordKind, error) {
	raw, err := fs.GetString("record")
	if err != nil {
		return "", fmt.Errorf("failed to get record flag: %w", err)
	}
	kind, err := record.ParseRecordKind(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", lifecycle.ErrConfig, err)
	}
	return kind, nil
}

// recordFromFlags builds the record selected by --record from its field flags. When
// requireInterval is set, the broadcast kinds must be given an explicit --interval.
func recordFromFlags(fs *pflag.FlagSet, requireInterval bool) (record.Record, error) {
	kind, err := recordKindFromFlags(fs)
	if err != nil {
		return nil, err
	}

	switch kind {
	case record.RecordKindAll2All, record.RecordKindPacketTest:
		if requireInterval && !fs.Changed("interval") {
			return nil, fmt.Errorf("%w: --interval is required for %s records", lifecycle.ErrConfig, kind)
		}
		interval, err := fs.GetUint16("interval")
		if err != nil {
			return nil, fmt.Errorf("failed to get interval flag: %w", err)
		}
		if kind == record.RecordKindAll2All {
			packetSize, err := fs.GetUint16("packet-size")
			if err != nil {
				return nil, fmt.Errorf("failed to get packet-size flag: %w", err)
			}
			return record.NewAll2AllConfig(interval, packetSize), nil
		}
		verify, err := fs.GetBool("verify")
		if err != nil {
			return nil, fmt.Errorf("failed to get verify flag: %w", err)
		}
		extra, err := fs.GetUint16("packet-extra-size")
		if err != nil {
			return nil, fmt.Errorf("failed to get packet-extra-size flag: %w", err)
		}
		return record.NewPacketTestConfig(interval, verify, extra), nil
	case record.RecordKindWeighting:
		rawMode, err := fs.GetString("mode")
		if err != nil {
			return nil, fmt.Errorf("failed to get mode flag: %w", err)
		}
		mode, err := record.ParseWeightingMode(rawMode)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", lifecycle.ErrConfig, err)
		}
		timeConstant, err := fs.GetUint64("time-constant-ms")
		if err != nil {
			return nil, fmt.Errorf("failed to get time-constant-ms flag: %w", err)
		}
		return record.NewWeightingConfig(mode, timeConstant), nil
	default:
		return nil, fmt.Errorf("%w: %w: %q", lifecycle.ErrConfig, record.ErrUnknownRecordKind, kind)
	}
}
