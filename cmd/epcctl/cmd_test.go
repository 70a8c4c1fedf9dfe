package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tyan-boot/wdepc/pkg/epc"
)

func TestConfirmProfile(t *testing.T) {
	errRead := errors.New("read failed")
	testCases := []struct {
		name    string
		epc     string
		yes     bool
		answer  bool
		askErr  error
		wantAsk bool
		wantErr error
	}{
		{"leaves EPC alone", "", false, false, nil, false, nil},
		{"disables EPC", "disable", false, false, nil, false, nil},
		{"enables EPC with --yes", "enable", true, false, nil, false, nil},
		{"enables EPC, confirmed", "enable", false, true, nil, true, nil},
		{"enables EPC, declined", "enable", false, false, nil, true, errNotConfirmed},
		{"enables EPC, no answer", "enable", false, false, errRead, true, errRead},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			asked := false
			ask := func(string) (bool, error) {
				asked = true
				return tc.answer, tc.askErr
			}
			err := confirmProfile(&epc.Profile{EPC: tc.epc}, tc.yes, ask)
			assert.Equal(t, tc.wantAsk, asked)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}
