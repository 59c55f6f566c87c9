// =============================================================================
// EDI Claims Converter - X12 Constants
// =============================================================================
//
// Segment tags, ISA element positions, functional identifiers and guide
// versions for the 835 and 837P transaction sets.
//
// =============================================================================

package x12

// Segment tags interpreted or emitted by this module.
const (
	TagISA = "ISA"
	TagIEA = "IEA"
	TagGS  = "GS"
	TagGE  = "GE"
	TagST  = "ST"
	TagSE  = "SE"
	TagBHT = "BHT"
	TagBPR = "BPR"
	TagTRN = "TRN"
	TagDTM = "DTM"
	TagDTP = "DTP"
	TagN1  = "N1"
	TagN3  = "N3"
	TagN4  = "N4"
	TagNM1 = "NM1"
	TagPER = "PER"
	TagREF = "REF"
	TagHL  = "HL"
	TagPRV = "PRV"
	TagSBR = "SBR"
	TagDMG = "DMG"
	TagCLM = "CLM"
	TagHI  = "HI"
	TagLX  = "LX"
	TagSV1 = "SV1"
	TagCLP = "CLP"
	TagCAS = "CAS"
	TagSVC = "SVC"
	TagAMT = "AMT"
	TagPLB = "PLB"
)

// ISA element positions, counted from the tag.
const (
	isaIndexSegmentID = iota
	isaIndexAuthInfoQualifier
	isaIndexAuthInfo
	isaIndexSecurityInfoQualifier
	isaIndexSecurityInfo
	isaIndexSenderIDQualifier
	isaIndexSenderID
	isaIndexReceiverIDQualifier
	isaIndexReceiverID
	isaIndexDate
	isaIndexTime
	isaIndexStandardsID
	isaIndexVersion
	ISAIndexControlNumber
	isaIndexAckRequested
	ISAIndexUsageIndicator
	isaIndexComponentElementSeparator
)

// Fixed ISA field widths.
const (
	ISALenAuthInfo      = 10
	ISALenSecurityInfo  = 10
	ISALenInterchangeID = 15
	ISALenControlNumber = 9
)

// Control number widths for the group and transaction set envelopes.
const (
	GroupControlNumberLen       = 9
	TransactionControlNumberLen = 4
)

// Functional identifier codes used in GS01.
const (
	FunctionalIDRemittance = "HP"
	FunctionalIDClaim      = "HC"
)

// Implementation guide versions.
const (
	InterchangeVersion     = "00401"
	RemittanceGuideVersion = "005010X221A1"
	ClaimGuideVersion      = "005010X222A1"
)

// Usage indicators (ISA15).
const (
	UsageProduction = "P"
	UsageTest       = "T"
)
