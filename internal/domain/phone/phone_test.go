package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "771234567", want: "+221771234567"},
		{in: "77 123 45 67", want: "+221771234567"},
		{in: "+221 77 123 45 67", want: "+221771234567"},
		{in: "221771234567", want: "+221771234567"},
		{in: "0771234567", want: "+221771234567"},
		{in: "(+221) 78-000-11-22", want: "+221780001122"},
		{in: "12345", wantErr: true},
		{in: "7712345", wantErr: true},
		{in: "1771234567", wantErr: true},
		{in: "331771234567", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
