package parse

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sensorsOutput = `coretemp-isa-0000
Adapter: ISA adapter
Package id 0:
  temp1_input: 45.000
  temp1_max: 80.000
  temp1_crit: 100.000
  temp1_crit_alarm: 0.000
Core 0:
  temp2_input: 43.000

acpitz-acpi-0
Adapter: ACPI interface
temp1:
  temp1_input: 27.800
  temp1_crit: 119.000
`

func TestSensors_TwoDevices(t *testing.T) {
	devs, err := Sensors(sensorsOutput)
	require.NoError(t, err)
	require.Len(t, devs, 2)

	assert.Equal(t, "device0", devs[0].ID)
	assert.Equal(t, "coretemp-isa-0000", devs[0].PrimaryName)
	assert.Equal(t, "ISA adapter", devs[0].SecondaryName)
	assert.Equal(t, []string{"temp1_input", "temp1_max", "temp1_crit", "temp1_crit_alarm", "temp2_input"}, devs[0].Values.Keys())
	assert.Equal(t, "45.000", devs[0].Values.Value("temp1_input"))

	assert.Equal(t, "device1", devs[1].ID)
	assert.Equal(t, "acpitz-acpi-0", devs[1].PrimaryName)
	assert.Equal(t, "ACPI interface", devs[1].SecondaryName)
	assert.Equal(t, "119.000", devs[1].Values.Value("temp1_crit"))
}

func TestSensors_DropsEmptyValues(t *testing.T) {
	devs, err := Sensors(sensorsOutput)
	require.NoError(t, err)
	_, ok := devs[0].Values.Get("PackageId0")
	assert.False(t, ok)
	_, ok = devs[0].Values.Get("Core0")
	assert.False(t, ok)
}

func TestSensors_ValueStripsSpacesAndColons(t *testing.T) {
	text := "nct6775-isa-0290\nAdapter: ISA adapter\nin0 : 0.9 : 2\n"
	devs, err := Sensors(text)
	require.NoError(t, err)
	require.Len(t, devs, 1)
	assert.Equal(t, "0.92", devs[0].Values.Value("in0"))
}

func TestSensors_ExtraBlankLinesAndNoTrailingNewline(t *testing.T) {
	text := "\n\nchip-a\nAdapter: Virtual device\n  temp1_input: 30.000\n\n\n\nchip-b\nAdapter: PCI adapter\n  power1_average: 12.5"
	devs, err := Sensors(text)
	require.NoError(t, err)
	require.Len(t, devs, 2)
	assert.Equal(t, "device0", devs[0].ID)
	assert.Equal(t, "device1", devs[1].ID)
	assert.Equal(t, "12.5", devs[1].Values.Value("power1_average"))
}

func TestSensors_AdapterWithoutSpace(t *testing.T) {
	devs, err := Sensors("chip\nAdapter:\n")
	require.NoError(t, err)
	require.Len(t, devs, 1)
	assert.Equal(t, "", devs[0].SecondaryName)
	assert.Equal(t, 0, devs[0].Values.Len())
}

func TestSensors_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
	}{
		{"single line block", "chip-only\n", 1},
		{"value line without colon", "chip\nAdapter: ISA adapter\n  garbage line\n", 3},
		{"second block single line", sensorsOutput + "\nlonely\n", 17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sensors(tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedBlock)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.line, perr.Line)
		})
	}
}

func TestSensors_Empty(t *testing.T) {
	devs, err := Sensors("")
	require.NoError(t, err)
	assert.Empty(t, devs)
}

func TestSensors_BlockCountMatches(t *testing.T) {
	for n := 1; n <= 6; n++ {
		blocks := make([]string, n)
		for i := range blocks {
			blocks[i] = fmt.Sprintf("chip%d\nAdapter: bus %d\n  temp1_input: %d.000", i, i, 20+i)
		}
		devs, err := Sensors(strings.Join(blocks, "\n\n") + "\n")
		require.NoError(t, err)
		require.Len(t, devs, n)
		for i, d := range devs {
			assert.Equal(t, fmt.Sprintf("chip%d", i), d.PrimaryName)
			assert.NotEmpty(t, d.PrimaryName)
		}
	}
}

func FuzzSensors(f *testing.F) {
	f.Add(sensorsOutput)
	f.Add("a\nb\n\nc")
	f.Fuzz(func(t *testing.T, text string) {
		devs, err := Sensors(text)
		if err != nil {
			return
		}
		for i, d := range devs {
			if d.ID != fmt.Sprintf("device%d", i) {
				t.Fatalf("device %d has id %q", i, d.ID)
			}
			if d.PrimaryName == "" {
				t.Fatalf("device %d has empty primary name", i)
			}
		}
	})
}
