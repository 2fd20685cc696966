package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatBytes(t *testing.T) {
	require.Equal(t, "512B", FormatBytes(512))
	require.Equal(t, "1KB", FormatBytes(1024))
	require.Equal(t, "1.50MB", FormatBytes(3*MB/2))
	require.Equal(t, "2GB", FormatBytes(2*GB))
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{in: "512", want: 512},
		{in: "4KB", want: 4096},
		{in: "1.5mb", want: 3 * MB / 2},
		{in: "2 GB", want: 2 * GB},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "-1KB", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBytes(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
