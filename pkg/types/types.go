// Package types defines the data model shared by the launcher, the
// process query engine and the CLI.
package types

// Family is the operating system family of the host.
type Family string

// Known OS families
const (
	FamilyWindows Family = "win"
	FamilyLinux   Family = "linux"
	FamilyBSD     Family = "bsd"
	FamilyMac     Family = "mac"
	FamilyOther   Family = "other"
)

// IsUnix reports whether the family is served by the ps-based path.
func (f Family) IsUnix() bool {
	return f == FamilyLinux || f == FamilyMac || f == FamilyBSD
}
