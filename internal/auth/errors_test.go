package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailureKind(t *testing.T) {
	tests := []struct {
		err   error
		kind  string
		is401 bool
	}{
		{err: nil, kind: ""},
		{err: ErrNotFound, kind: "not_found", is401: true},
		{err: ErrBadCredentials, kind: "bad_credentials", is401: true},
		{err: fmt.Errorf("%w: bad segment", ErrTokenMalformed), kind: "malformed", is401: true},
		{err: fmt.Errorf("%w: exp", ErrTokenExpired), kind: "expired", is401: true},
		{err: fmt.Errorf("%w: sig", ErrTokenForged), kind: "forged", is401: true},
		{err: ErrDenied, kind: "denied"},
		{err: errors.New("boom"), kind: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			assert.Equal(t, tt.kind, FailureKind(tt.err))
			assert.Equal(t, tt.is401, IsAuthenticationFailure(tt.err))
		})
	}
}
