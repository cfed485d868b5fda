package wire

// SoftwareCode is the codec's internal-only status code. It is never put
// on the wire; it is the value every pack/unpack function in this package
// returns instead of an error, per the "codec never throws" design.
type SoftwareCode uint8

const (
	SWSuccess      SoftwareCode = 0x00
	SWError        SoftwareCode = 0x01
	SWErrorData    SoftwareCode = 0x02
	SWErrorLength  SoftwareCode = 0x03
	SWErrorNull    SoftwareCode = 0x04
	SWErrorCommand SoftwareCode = 0x05
)

func (c SoftwareCode) String() string {
	switch c {
	case SWSuccess:
		return "success"
	case SWError:
		return "error"
	case SWErrorData:
		return "error_data"
	case SWErrorLength:
		return "error_length"
	case SWErrorNull:
		return "error_null"
	case SWErrorCommand:
		return "error_command_fail"
	default:
		return "unknown"
	}
}

// CompletionCode is the wire-level, per-response status byte (§3).
type CompletionCode uint8

const (
	Success                 CompletionCode = 0x00
	Error                   CompletionCode = 0x01
	ErrorInvalidData        CompletionCode = 0x02
	ErrorInvalidDataLength  CompletionCode = 0x03
	ErrorNotReady           CompletionCode = 0x04
	ErrorUnsupportedCommand CompletionCode = 0x05
	ErrorUnsupportedMsgType CompletionCode = 0x06
	Accepted                CompletionCode = 0x7D
	Busy                    CompletionCode = 0x7E
	ErrorBusAccess          CompletionCode = 0x7F
)

// ReasonCode is the wire-level sub-status attached to non-success
// responses, per libnsm/base.h's nsm_reason_codes.
type ReasonCode uint16

const (
	ReasonNull                   ReasonCode = 0x00
	ReasonInvalidPCI             ReasonCode = 0x01
	ReasonInvalidRQD             ReasonCode = 0x02
	ReasonTimeout                ReasonCode = 0x03
	ReasonDownstreamTimeout      ReasonCode = 0x04
	ReasonI2CNackFromDevAddr     ReasonCode = 0x05
	ReasonI2CNackFromDevCmdData  ReasonCode = 0x06
	ReasonI2CNackFromDevAddrRS   ReasonCode = 0x07
	ReasonNVLinkPortInvalid      ReasonCode = 0x08
	ReasonNVLinkPortDisabled     ReasonCode = 0x09
	ReasonNotSupported           ReasonCode = 0x0A
)

// NvidiaMsgType identifies the NSM command family carried in the header's
// nvidia_msg_type byte.
type NvidiaMsgType uint8

const (
	TypeCapabilityDiscovery  NvidiaMsgType = 0
	TypeNetworkPort          NvidiaMsgType = 1
	TypePCILink              NvidiaMsgType = 2
	TypePlatformEnvironmental NvidiaMsgType = 3
	TypeDiagnostic           NvidiaMsgType = 4
	TypeDeviceConfiguration  NvidiaMsgType = 5
	TypeFirmware             NvidiaMsgType = 6
)

// EventClass is the event message's class byte (§3).
type EventClass uint8

const (
	EventClassGeneral              EventClass = 0x00
	EventClassAssertionDeassertion EventClass = 0x01
	EventClassNvidiaGeneral        EventClass = 0x80
)

func (c EventClass) String() string {
	switch c {
	case EventClassGeneral:
		return "general"
	case EventClassAssertionDeassertion:
		return "assertion_deassertion"
	case EventClassNvidiaGeneral:
		return "nvidia_general"
	default:
		return "unknown"
	}
}
