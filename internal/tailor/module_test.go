package tailor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSenderPatterns(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    []string
		wantErr bool
	}{
		{
			name:    "compiles and lowercases senders",
			entries: []string{`Alerts@Cumplo.cl=Nombre: (.+?) Email: (\S+)`},
			want:    []string{"alerts@cumplo.cl"},
		},
		{
			name:    "regex may contain equals signs",
			entries: []string{`a@b.c=name=(\w+) mail=(\S+)`},
			want:    []string{"a@b.c"},
		},
		{name: "missing separator", entries: []string{"a@b.c"}, wantErr: true},
		{name: "invalid regex", entries: []string{"a@b.c=(("}, wantErr: true},
		{name: "needs two groups", entries: []string{`a@b.c=Name: (\w+)`}, wantErr: true},
		{name: "empty", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := senderPatterns(tt.entries)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			keys := make([]string, 0, len(got))
			for k := range got {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tt.want, keys)
		})
	}
}
