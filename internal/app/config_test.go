package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		in      Config
		wantErr string
	}{
		{name: "minimal", in: Config{Dir: ".taskcluster"}},
		{name: "missing dir", in: Config{}, wantErr: "Dir is a required"},
		{name: "bad format", in: Config{Dir: "d", LogFormat: "xml"}, wantErr: "invalid log format"},
		{name: "bad level", in: Config{Dir: "d", LogLevel: "trace"}, wantErr: "invalid log level"},
		{name: "submit and dry-run", in: Config{Dir: "d", Submit: true, DryRun: true}, wantErr: "mutually exclusive"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := NewConfig(tc.in)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "text", cfg.LogFormat)
			assert.Equal(t, "info", cfg.LogLevel)
			assert.NotNil(t, cfg.Getenv)
		})
	}
}
