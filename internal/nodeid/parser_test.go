package nodeid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name         string
		rawID        string
		expectErr    string
		expectedAddr Address
	}{
		{name: "plain task", rawID: "git", expectedAddr: Task("git")},
		{name: "identifier with dashes", rawID: "clone-hg", expectedAddr: Task("clone-hg")},
		{name: "instance", rawID: `hg["4.3"]`, expectedAddr: Instance("hg", "4.3")},
		{name: "error - empty", rawID: "", expectErr: "cannot be empty"},
		{name: "error - invalid identifier", rawID: "4.3", expectErr: "not a valid identifier"},
		{name: "error - unquoted key", rawID: "hg[4]", expectErr: "quoted string"},
		{name: "error - missing bracket", rawID: `hg["4.3"`, expectErr: "missing closing bracket"},
		{name: "error - trailing text", rawID: `hg["4.3"].id`, expectErr: "missing closing bracket"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := Parse(tc.rawID)
			if tc.expectErr != "" {
				assert.ErrorContains(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedAddr, addr)
		})
	}
}
