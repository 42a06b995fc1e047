package fixedwindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	base := DefaultConfig()

	tests := []struct {
		name string
		text string
		want Config
	}{
		{"empty", "", base},
		{"limit and window", "limit=3,window=60", Config{Limit: 3, Window: time.Minute}},
		{"period synonym", "period=3600", Config{Limit: 200, Window: time.Hour}},
		{"limit only keeps default window", "limit=1", Config{Limit: 1, Window: 24 * time.Hour}},
		{"whitespace trimmed", "  limit = 7 ,  window= 10 ", Config{Limit: 7, Window: 10 * time.Second}},
		{"malformed limit ignored", "limit=abc", base},
		{"negative limit ignored", "limit=-1", base},
		{"limit overflow ignored", "limit=4294967296", base},
		{"max limit", "limit=4294967295", Config{Limit: 4294967295, Window: 24 * time.Hour}},
		{"zero limit accepted", "limit=0", Config{Limit: 0, Window: 24 * time.Hour}},
		{"zero window ignored", "window=0", base},
		{"window overflow ignored", "window=18446744073709551615", base},
		{"largest representable window", "window=9223372036", Config{Limit: 200, Window: 9223372036 * time.Second}},
		{"window just past duration range", "window=9223372037", base},
		{"unknown keys ignored", "burst=5,limit=9,foo", Config{Limit: 9, Window: 24 * time.Hour}},
		{"later pairs win", "limit=1,limit=2,window=5,period=6", Config{Limit: 2, Window: 6 * time.Second}},
		{"value with equals", "limit=5=6", base},
		{"keys are case sensitive", "LIMIT=5", base},
		{"empty pieces", ",,limit=4,,", Config{Limit: 4, Window: 24 * time.Hour}},
		{"missing value", "limit=", base},
		{"leading plus", "limit=+5,window=+60", Config{Limit: 5, Window: time.Minute}},
		{"double plus ignored", "limit=++5,window=++60", base},
		{"bare plus ignored", "limit=+", base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseConfig(tt.text, base))
		})
	}
}

func TestParseConfig_KeepsCumulativeBase(t *testing.T) {
	base := Config{Limit: 10}
	assert.Equal(t, Config{Limit: 3}, ParseConfig("limit=3", base))
	assert.Equal(t, Config{Limit: 10, Window: 30 * time.Second}, ParseConfig("window=30", base))
}

func TestParseConfigBytes(t *testing.T) {
	base := DefaultConfig()
	assert.Equal(t, Config{Limit: 3, Window: time.Minute}, ParseConfigBytes([]byte("limit=3,window=60"), base))
	assert.Equal(t, base, ParseConfigBytes([]byte{'l', 'i', 'm', 'i', 't', '=', '3', 0xff}, base))
	assert.Equal(t, base, ParseConfigBytes(nil, base))
}

func TestConfig_StringRoundTrip(t *testing.T) {
	configs := []Config{
		DefaultConfig(),
		{Limit: 3, Window: time.Minute},
		{Limit: 0, Window: time.Second},
		{Limit: 4294967295, Window: 9223372036 * time.Second},
	}
	for _, c := range configs {
		require.NoError(t, c.Validate())
		assert.Equal(t, c, ParseConfig(c.String(), Config{Limit: 1, Window: time.Hour}), c.String())
	}

	assert.Equal(t, "limit=3,window=60", Config{Limit: 3, Window: time.Minute}.String())
	assert.Equal(t, "limit=5", Config{Limit: 5}.String())
	assert.Equal(t, Config{Limit: 5}, ParseConfig(Config{Limit: 5}.String(), Config{}))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{Limit: 1}.Validate())
	assert.NoError(t, DefaultConfig().Validate())

	err := Config{Limit: 1, Window: 1500 * time.Millisecond}.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	assert.ErrorIs(t, Config{Limit: 1, Window: -time.Second}.Validate(), ErrInvalidWindow)
}

func TestNewConfig(t *testing.T) {
	assert.Equal(t, DefaultConfig(), NewConfig().Build())

	c := NewConfig().WithLimit(3).WithWindow(time.Minute).Build()
	assert.Equal(t, Config{Limit: 3, Window: time.Minute}, c)

	c = NewConfig().WithWindow(0).Build()
	assert.True(t, c.Cumulative())
	assert.Equal(t, DefaultLimit, c.Limit)
}
