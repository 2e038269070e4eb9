package host

import (
	"strings"

	"github.com/rzbill/easyproc/pkg/types"
)

// familyChecks is evaluated in order; the first substring hit wins.
var familyChecks = []struct {
	needle string
	family types.Family
}{
	{"windows", types.FamilyWindows},
	{"linux", types.FamilyLinux},
	{"bsd", types.FamilyBSD},
	{"mac", types.FamilyMac},
	{"darwin", types.FamilyMac},
}

// DetectFamily maps an OS name such as runtime.GOOS or `uname -s` output to
// its family.
func DetectFamily(name string) types.Family {
	name = strings.ToLower(name)
	for _, check := range familyChecks {
		if strings.Contains(name, check.needle) {
			return check.family
		}
	}
	return types.FamilyOther
}
