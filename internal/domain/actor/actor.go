package actor

import "strings"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Caller is the pre-authenticated identity behind one request. It is resolved
// once by the identity provider and passed explicitly into every operation.
type Caller struct {
	Wallet string
	Role   Role
}

func User(wallet string) Caller  { return Caller{Wallet: NormalizeWallet(wallet), Role: RoleUser} }
func Admin(wallet string) Caller { return Caller{Wallet: NormalizeWallet(wallet), Role: RoleAdmin} }

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }

// Is reports whether the caller owns wallet.
func (c Caller) Is(wallet string) bool {
	return c.Wallet != "" && c.Wallet == NormalizeWallet(wallet)
}

// NormalizeWallet lowercases and trims a wallet identity so comparisons are
// case-insensitive (hex addresses are often mixed-case checksummed).
func NormalizeWallet(w string) string { return strings.ToLower(strings.TrimSpace(w)) }
