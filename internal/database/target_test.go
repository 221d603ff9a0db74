package database

import (
	"testing"

	"github.com/koustreak/pmysql/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		entry string
		host  string
		port  int
	}{
		{entry: "db1.example.net", host: "db1.example.net"},
		{entry: "db1.example.net:3307", host: "db1.example.net", port: 3307},
		{entry: "10.0.0.4:13306", host: "10.0.0.4", port: 13306},
		{entry: "[::1]:3310", host: "::1", port: 3310},
		{entry: "[fe80::1]", host: "fe80::1"},
		{entry: "fe80::1", host: "fe80::1"},
		{entry: "db2:", host: "db2"},
		{entry: "", host: ""},
	}

	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			target, err := ParseTarget(tt.entry)
			require.NoError(t, err)
			assert.Equal(t, tt.entry, target.Name)
			assert.Equal(t, tt.host, target.Host)
			assert.Equal(t, tt.port, target.Port)
		})
	}
}

func TestParseTarget_InvalidPort(t *testing.T) {
	for _, entry := range []string{"db1:abc", "db1:0", "db1:70000"} {
		t.Run(entry, func(t *testing.T) {
			target, err := ParseTarget(entry)
			require.Error(t, err)
			assert.True(t, errs.IsInvalidInput(err))
			assert.Equal(t, entry, target.Name)
		})
	}
}

func TestConfig_PortFor(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3306, cfg.PortFor(Target{Host: "db1"}))

	cfg.Port = 3310
	assert.Equal(t, 3310, cfg.PortFor(Target{Host: "db1"}))
	assert.Equal(t, 3307, cfg.PortFor(Target{Host: "db1", Port: 3307}))

	pg := &Config{Driver: DriverPostgres}
	assert.Equal(t, 5432, pg.PortFor(Target{Host: "pg1"}))
}

func TestConfig_UseSocket(t *testing.T) {
	cfg := &Config{Socket: "/run/mysqld/mysqld.sock"}

	assert.True(t, cfg.UseSocket(Target{}))
	assert.True(t, cfg.UseSocket(Target{Host: "localhost"}))
	assert.False(t, cfg.UseSocket(Target{Host: "127.0.0.1"}))
	assert.False(t, (&Config{}).UseSocket(Target{}))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`shop`", QuoteIdent(DriverMySQL, "shop"))
	assert.Equal(t, "`we``ird`", QuoteIdent(DriverMySQL, "we`ird"))
	assert.Equal(t, `"we""ird"`, QuoteIdent(DriverPostgres, `we"ird`))
}
