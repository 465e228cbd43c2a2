package pipeline

import (
	"testing"
	"time"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/config"
	"github.com/KaramelBytes/uvmed-cli/internal/med"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	r, err := ParseRange("05/01/2024", "06/01/2024", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), r.End)
	assert.True(t, r.Contains(time.Date(2024, 1, 6, 23, 59, 59, 500_000_000, time.UTC)), "sub-second sample in the last second")
	assert.False(t, r.Contains(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)))

	r, err = ParseRange("", "06/01/2024 10:00", true)
	require.NoError(t, err)
	assert.True(t, r.Start.IsZero())
	assert.Equal(t, time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC), r.End)

	r, err = ParseRange("05/01/2024 10:00", "05/01/2024 10:00", true)
	require.NoError(t, err)
	assert.Equal(t, r.Start, r.End)

	_, err = ParseRange("06/01/2024 10:00", "05/01/2024 10:00", true)
	var inv *InvalidSettingError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "range", inv.Name)

	_, err = ParseRange("ayer", "", true)
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "start date", inv.Name)
}

func TestSettingsFromConfig(t *testing.T) {
	c := config.Defaults()
	uv := SettingsFromConfig(c, ToolUV)
	wind := SettingsFromConfig(c, ToolWind)
	assert.Equal(t, 7, uv.SkipRows)
	assert.Equal(t, -1, wind.SkipRows)
	assert.Equal(t, "Tipo II", uv.Skin)
	assert.True(t, uv.DayFirst)
	assert.NotNil(t, uv.Columns)
}

func TestSettings_Requests(t *testing.T) {
	s := SettingsFromConfig(config.Defaults(), ToolUV)
	s.Mode = "multi"
	s.Columns[columns.UV] = "Sensor"
	s.Columns[columns.Speed] = " "
	s.Decimal = "comma"

	req, err := s.UVRequest(nil)
	require.NoError(t, err)
	assert.Equal(t, med.ModeMulti, req.MED.Mode)
	assert.Len(t, req.MED.Skins, 6)
	assert.Equal(t, map[columns.Field]string{columns.UV: "Sensor"}, req.Resolver.Overrides)
	assert.Equal(t, ',', req.Dataset.Number.Decimal)
	assert.Equal(t, 210.0, req.MED.FixedThreshold)

	s.Skins = []string{"I", "III"}
	req, err = s.UVRequest(nil)
	require.NoError(t, err)
	assert.Len(t, req.MED.Skins, 2)

	opt, err := s.TableOptions(columns.UV)
	require.NoError(t, err)
	assert.Equal(t, 7, opt.SkipRows)
	assert.True(t, opt.HeaderHint([]string{"Fecha", "UV"}))
	assert.False(t, opt.HeaderHint([]string{"Fecha", "Temp"}))

	w := SettingsFromConfig(config.Defaults(), ToolWind)
	w.SpeedBins = 4
	wreq, err := w.WindRequest(nil)
	require.NoError(t, err)
	assert.Equal(t, 4, wreq.SpeedBins)
}

func TestSettings_Invalid(t *testing.T) {
	base := SettingsFromConfig(config.Defaults(), ToolUV)
	var inv *InvalidSettingError

	s := base
	s.Delimiter = "|"
	_, err := s.TableOptions()
	assert.ErrorAs(t, err, &inv)

	s = base
	s.Mode = "hourly"
	_, err = s.UVRequest(nil)
	assert.ErrorAs(t, err, &inv)

	s = base
	s.Policy = "random"
	_, err = s.UVRequest(nil)
	assert.ErrorAs(t, err, &inv)

	s = base
	s.Skin = "Tipo IX"
	_, err = s.UVRequest(nil)
	var unknown *med.UnknownSkinTypeError
	assert.ErrorAs(t, err, &unknown)

	s = base
	s.SpeedBins = -2
	_, err = s.WindRequest(nil)
	assert.ErrorAs(t, err, &inv)
}
