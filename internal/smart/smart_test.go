package smart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darshan-rambhia/whm/internal/model"
)

func TestParseHealth(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"passed", "SMART overall-health self-assessment test result: PASSED\n", "PASSED"},
		{"failed", "SMART overall-health self-assessment test result: FAILED!", "FAILED!"},
		{"scsi", "SMART Health Status: OK", "OK"},
		{"no separator", "PASSED", "PASSED"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHealth(tt.in))
		})
	}
}

func smartRow(id, name, value, worst, thresh, raw string) model.Fields {
	f := model.NewFields("attr_id", "attribute_name", "value", "worst", "thresh", "raw_value")
	f.Set("attr_id", id)
	f.Set("attribute_name", name)
	f.Set("value", value)
	f.Set("worst", worst)
	f.Set("thresh", thresh)
	f.Set("raw_value", raw)
	return f
}

func TestAttributes(t *testing.T) {
	rows := []model.Fields{
		smartRow("5", "Reallocated_Sector_Ct", "100", "100", "010", "0"),
		smartRow("194", "Temperature_Celsius", "060", "045", "000", "40 (Min/Max 25/55)"),
	}
	attrs, err := Attributes(rows)
	require.NoError(t, err)
	require.Len(t, attrs, 2)

	assert.Equal(t, 5, attrs[0].ID)
	assert.Equal(t, int64(100), attrs[0].Value)
	assert.Equal(t, int64(10), attrs[0].Threshold)

	assert.Equal(t, int64(40), attrs[1].RawValue)
	assert.Equal(t, "40 (Min/Max 25/55)", attrs[1].RawString)
}

func TestAttributes_BadID(t *testing.T) {
	_, err := Attributes([]model.Fields{smartRow("x", "n", "1", "1", "1", "1")})
	assert.ErrorContains(t, err, "parsing id")
}

func TestEvaluateAttribute(t *testing.T) {
	tests := []struct {
		name     string
		attr     model.SMARTAttribute
		want     int
		wantRate bool
	}{
		{"below vendor threshold", model.SMARTAttribute{ID: 5, Value: 5, Threshold: 10}, model.StatusFailedSmart, false},
		{"threshold zero never fails", model.SMARTAttribute{ID: 240, Value: 1, Threshold: 0}, model.StatusPassed, false},
		{"unknown attribute", model.SMARTAttribute{ID: 240, Value: 100, Threshold: 10, RawValue: 999}, model.StatusPassed, false},
		{"healthy reallocated", model.SMARTAttribute{ID: 5, Value: 100, Threshold: 10, RawValue: 0}, model.StatusPassed, true},
		{"many reallocated", model.SMARTAttribute{ID: 5, Value: 100, Threshold: 10, RawValue: 100}, model.StatusFailedScrutiny, true},
		{"hot drive warns", model.SMARTAttribute{ID: 194, Value: 40, RawValue: 60}, model.StatusWarnScrutiny, true},
		{"negative raw on critical", model.SMARTAttribute{ID: 197, Value: 100, RawValue: -1}, model.StatusWarnScrutiny, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := tt.attr
			got := EvaluateAttribute(&attr)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, attr.Status)
			assert.Equal(t, tt.wantRate, attr.FailureRate != nil)
		})
	}
}

func TestEvaluate(t *testing.T) {
	attrs := []model.SMARTAttribute{
		{ID: 5, Value: 100, Threshold: 10, RawValue: 100},
		{ID: 194, Value: 40, RawValue: 60},
	}
	got := Evaluate("PASSED", attrs)
	assert.Equal(t, model.StatusFailedScrutiny|model.StatusWarnScrutiny, got)
	assert.Equal(t, model.StatusFailedScrutiny, attrs[0].Status)

	assert.Equal(t, model.StatusPassed, Evaluate("PASSED", nil))
	assert.Equal(t, model.StatusFailedSmart, Evaluate("FAILED!", nil))
	assert.Equal(t, model.StatusPassed, Evaluate("", nil))
}

func TestFindBucket(t *testing.T) {
	th, ok := LookupThreshold(5)
	require.True(t, ok)
	b := th.FindBucket(2)
	require.NotNil(t, b)
	assert.Equal(t, 0.027, b.AnnualFailureRate)
	assert.Nil(t, th.FindBucket(-5))

	_, ok = LookupThreshold(4242)
	assert.False(t, ok)
}

const nvmeOutput = `smartctl 7.3 2022-02-28 r5338 [x86_64-linux-6.1.0] (local build)
Copyright (C) 2002-22, Bruce Allen, Christian Franke, www.smartmontools.org

=== START OF SMART DATA SECTION ===
SMART/Health Information (NVMe Log 0x02)
Critical Warning:                   0x00
Temperature:                        35 Celsius
Available Spare:                    100%
Percentage Used:                    3%
Data Units Written:                 12,345,678 [6.32 TB]
Media and Data Integrity Errors:    0
`

func TestParseNVMe(t *testing.T) {
	rows, err := ParseNVMe(nvmeOutput)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Critical Warning", rows[0].Value("attribute_name"))
	assert.Equal(t, "0x00", rows[0].Value("raw_value"))
	assert.Equal(t, "12,345,678 [6.32 TB]", rows[4].Value("raw_value"))
	assert.Equal(t, model.StatusPassed, EvaluateNVMe(rows))
}

func TestParseNVMe_NoSection(t *testing.T) {
	_, err := ParseNVMe("Temperature: 35 Celsius\n")
	assert.ErrorIs(t, err, ErrNoNVMeSection)
}

func TestEvaluateNVMe(t *testing.T) {
	row := func(name, raw string) model.Fields {
		f := model.NewFields(NVMeHeaders...)
		f.Set("attribute_name", name)
		f.Set("raw_value", raw)
		return f
	}
	assert.Equal(t, model.StatusFailedSmart, EvaluateNVMe([]model.Fields{row("Critical Warning", "0x04")}))
	assert.Equal(t, model.StatusWarnScrutiny, EvaluateNVMe([]model.Fields{row("Percentage Used", "104%")}))
	assert.Equal(t, model.StatusWarnScrutiny, EvaluateNVMe([]model.Fields{row("Media and Data Integrity Errors", "1,024")}))
}

func FuzzParseNVMe(f *testing.F) {
	f.Add(nvmeOutput)
	f.Add("SMART/Health Information (NVMe Log 0x02)\nCritical Warning: 0x00\n")
	f.Add("")
	f.Fuzz(func(t *testing.T, text string) {
		rows, err := ParseNVMe(text)
		if err != nil {
			return
		}
		_ = EvaluateNVMe(rows)
	})
}
