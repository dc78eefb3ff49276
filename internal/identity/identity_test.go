package identity

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name       string
		token      string
		wantEntity string
		wantOK     bool
	}{
		{
			name:       "valid token with address",
			token:      base64.StdEncoding.EncodeToString([]byte(`{"address":"0xABC"}`)),
			wantEntity: "0xABC",
			wantOK:     true,
		},
		{
			name:       "address among other fields",
			token:      base64.StdEncoding.EncodeToString([]byte(`{"iat":123,"address":"user@example.com","aud":"x"}`)),
			wantEntity: "user@example.com",
			wantOK:     true,
		},
		{
			name:   "not base64",
			token:  "not-base64!!",
			wantOK: false,
		},
		{
			name:   "base64 but not JSON",
			token:  base64.StdEncoding.EncodeToString([]byte("hello world")),
			wantOK: false,
		},
		{
			name:   "JSON without address",
			token:  base64.StdEncoding.EncodeToString([]byte(`{"user":"nobody"}`)),
			wantOK: false,
		},
		{
			name:   "empty address",
			token:  base64.StdEncoding.EncodeToString([]byte(`{"address":""}`)),
			wantOK: false,
		},
		{
			name:   "empty token",
			token:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity, ok := r.Resolve(tt.token)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantEntity, entity)
		})
	}
}
