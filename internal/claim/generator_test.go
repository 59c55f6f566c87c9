package claim

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/edi-claims-converter/internal/x12"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.June, 10, 14, 5, 0, 0, time.UTC)

func fixedGenerator() *Generator {
	return &Generator{
		Clock:    func() time.Time { return fixedNow },
		Controls: x12.NewSequence(100),
	}
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func sampleClaim() ClaimSubmission {
	return ClaimSubmission{
		ClaimNumber: "CLM0001",
		Patient: &Patient{
			FirstName:         "Jane",
			LastName:          "Smith",
			DateOfBirth:       "1975-08-21",
			Gender:            "female",
			Address:           "9 Elm St",
			City:              "Springfield",
			State:             "IL",
			ZipCode:           "62701",
			InsuranceMemberID: "MBR778",
			InsurancePlan:     "PPO",
		},
		Provider: &Provider{
			Type:             ProviderTypeOrganization,
			OrganizationName: "Springfield Family Care",
			NPI:              "1999999999",
			TaxID:            "371234567",
			Address:          "1 Clinic Way",
			City:             "Springfield",
			State:            "IL",
			ZipCode:          "62702",
		},
		Payer:          "Blue Payer",
		PayerID:        "BP001",
		Amount:         amount("250.00"),
		ServiceDate:    "2024-06-01",
		DiagnosisCodes: []string{"J06.9", "R05.9"},
		ProcedureCodes: []string{"99214", "87880"},
	}
}

func tagsOf(segments []x12.Segment) []string {
	tags := make([]string, len(segments))
	for i, seg := range segments {
		tags[i] = seg.Tag()
	}
	return tags
}

func countTag(segments []x12.Segment, tag string) int {
	n := 0
	for _, seg := range segments {
		if seg.Tag() == tag {
			n++
		}
	}
	return n
}

func TestGenerate_SegmentOrder(t *testing.T) {
	out := fixedGenerator().Generate(sampleClaim(), SubmitterInfo{})
	segments := x12.Tokenize(out)

	assert.Equal(t, []string{
		"ISA", "GS", "ST", "BHT",
		"NM1", "PER", "NM1",
		"HL", "PRV", "NM1", "N3", "N4", "REF",
		"HL", "SBR", "NM1", "N3", "N4", "DMG", "NM1",
		"CLM", "DTP", "HI",
		"LX", "SV1", "DTP",
		"LX", "SV1", "DTP",
		"SE", "GE", "IEA",
	}, tagsOf(segments))
	assert.True(t, strings.HasSuffix(out, "~"))
}

func TestGenerate_SegmentContent(t *testing.T) {
	out := fixedGenerator().Generate(sampleClaim(), SubmitterInfo{
		SubmitterID:      "SUB01",
		ReceiverID:       "RCV01",
		ReceiverName:     "ACME CLEARING",
		OrganizationName: "Springfield Family Care",
		ContactName:      "Pat Biller",
		ContactPhone:     "2175550100",
		TestIndicator:    x12.UsageTest,
	})
	segments := x12.Tokenize(out)

	want := map[int]string{
		1:  "GS*HC*SUB01*RCV01*20240610*1405*000000101*X*005010X222A1",
		2:  "ST*837*0102*005010X222A1",
		3:  "BHT*0019*00*CLM0001*20240610*1405*CH",
		4:  "NM1*41*2*Springfield Family Care*****46*SUB01",
		5:  "PER*IC*Pat Biller*TE*2175550100",
		6:  "NM1*40*2*ACME CLEARING*****46*RCV01",
		7:  "HL*2**20*1",
		8:  "PRV*BI*PXC*207Q00000X",
		9:  "NM1*85*2*Springfield Family Care*****XX*1999999999",
		10: "N3*1 Clinic Way",
		11: "N4*Springfield*IL*62702",
		12: "REF*EI*371234567",
		13: "HL*3*2*22*0",
		14: "SBR*P*18***PPO****12",
		15: "NM1*IL*1*Smith*Jane****MI*MBR778",
		16: "N3*9 Elm St",
		17: "N4*Springfield*IL*62701",
		18: "DMG*D8*19750821*F",
		19: "NM1*PR*2*Blue Payer*****PI*BP001",
		20: "CLM*CLM0001*250.00***11:B:1**Y*Y**",
		21: "DTP*472*D8*20240601",
		22: "HI*ABK:J06.9*ABF:R05.9",
		23: "LX*1",
		24: "SV1*HC:99214*125.00*UN*1*11****1",
		25: "DTP*472*D8*20240601",
		26: "LX*2",
		27: "SV1*HC:87880*125.00*UN*1*11****1",
		29: "SE*30*0102",
		30: "GE*1*000000101",
		31: "IEA*1*000000100",
	}
	for i, segment := range want {
		assert.Equal(t, segment, segments[i].String(), "segment %d", i)
	}

	isa := segments[0]
	assert.Equal(t, "SUB01          ", isa.Element(6))
	assert.Equal(t, "RCV01          ", isa.Element(8))
	assert.Equal(t, "240610", isa.Element(9))
	assert.Equal(t, "000000100", isa.Element(x12.ISAIndexControlNumber))
	assert.Equal(t, x12.UsageTest, isa.Element(x12.ISAIndexUsageIndicator))
}

func TestGenerate_CountsPerProcedure(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			claim := sampleClaim()
			claim.ProcedureCodes = nil
			for i := 0; i < n; i++ {
				claim.ProcedureCodes = append(claim.ProcedureCodes, "9921"+strconv.Itoa(i))
			}

			segments := x12.Tokenize(fixedGenerator().Generate(claim, SubmitterInfo{}))

			assert.Equal(t, 1, countTag(segments, "CLM"))
			assert.Equal(t, n, countTag(segments, "LX"))
			assert.Equal(t, n, countTag(segments, "SV1"))

			// SE counts every segment emitted before it, plus itself.
			se := segments[len(segments)-3]
			require.Equal(t, "SE", se.Tag())
			assert.Equal(t, strconv.Itoa(len(segments)-2), se.Element(1))
		})
	}
}

func TestGenerate_LineChargeSplit(t *testing.T) {
	claim := sampleClaim()
	claim.Amount = amount("100")
	claim.ProcedureCodes = []string{"A", "B", "C"}

	segments := x12.Tokenize(fixedGenerator().Generate(claim, SubmitterInfo{}))
	for _, seg := range segments {
		if seg.Tag() == "SV1" {
			assert.Equal(t, "33.33", seg.Element(2))
		}
	}
}

func TestGenerate_Defaults(t *testing.T) {
	out := fixedGenerator().Generate(ClaimSubmission{}, SubmitterInfo{})
	segments := x12.Tokenize(out)

	want := map[int]string{
		3:  "BHT*0019*00*0000000103*20240610*1405*CH",
		4:  "NM1*41*2*AUREONCARE*****46*AUREONCARE",
		5:  "PER*IC*Billing Contact*TE*5555555555",
		6:  "NM1*40*2*CLEARINGHOUSE*****46*CLEARHOUSE",
		9:  "NM1*85*1*Provider*****XX*1234567890",
		10: "N3*123 Main St",
		11: "N4*City*ST*12345",
		12: "REF*EI*123456789",
		14: "SBR*P*18*******12",
		15: "NM1*IL*1*Doe*John****MI*123456789",
		16: "N3*456 Oak Ave",
		18: "DMG*D8*19800101*U",
		19: "NM1*PR*2*Insurance Company*****PI*12345",
		20: "CLM*0000000103*100.00***11:B:1**Y*Y**",
		21: "DTP*472*D8*20240610",
		22: "HI*ABK:Z00.00",
		23: "LX*1",
		24: "SV1*HC:99213*50.00*UN*1*11****1",
		26: "SE*27*0102",
	}
	for i, segment := range want {
		assert.Equal(t, segment, segments[i].String(), "segment %d", i)
	}

	assert.Equal(t, "AUREONCARE     ", segments[0].Element(6))
	assert.Equal(t, "CLEARHOUSE     ", segments[0].Element(8))
	assert.Equal(t, x12.UsageProduction, segments[0].Element(x12.ISAIndexUsageIndicator))
}

func TestGenerate_ProviderPersonAndGender(t *testing.T) {
	claim := sampleClaim()
	claim.Provider = &Provider{FirstName: "Ann", LastName: "Lee", MiddleName: "Q", OrganizationName: "Ignored"}
	claim.Patient.Gender = "Male"

	segments := x12.Tokenize(fixedGenerator().Generate(claim, SubmitterInfo{}))
	assert.Equal(t, "NM1*85*1*Lee*Ann*Q***XX*1234567890", segments[9].String())
	assert.Equal(t, "DMG*D8*19750821*M", segments[18].String())
}

func TestGenerate_ServiceDateFallsBackToToday(t *testing.T) {
	claim := sampleClaim()
	claim.ServiceDate = "sometime last week"

	segments := x12.Tokenize(fixedGenerator().Generate(claim, SubmitterInfo{}))
	assert.Equal(t, "DTP*472*D8*20240610", segments[21].String())
}

func TestGenerate837File_FreshControlNumbers(t *testing.T) {
	a := x12.Tokenize(Generate837File(sampleClaim(), SubmitterInfo{}))
	b := x12.Tokenize(Generate837File(sampleClaim(), SubmitterInfo{}))

	assert.NotEqual(t,
		a[0].Element(x12.ISAIndexControlNumber),
		b[0].Element(x12.ISAIndexControlNumber))
}

func TestGenerate_WithUUIDControls(t *testing.T) {
	g := &Generator{Clock: func() time.Time { return fixedNow }, Controls: x12.UUIDSource{}}
	segments := x12.Tokenize(g.Generate(ClaimSubmission{}, SubmitterInfo{}))

	icn := segments[0].Element(x12.ISAIndexControlNumber)
	assert.Len(t, icn, x12.ISALenControlNumber)
	assert.Equal(t, "IEA*1*"+icn, segments[len(segments)-1].String())
	assert.Len(t, segments[3].Element(3), ClaimControlNumberLen)
}
