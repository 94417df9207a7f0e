package domain

import "time"

// UserRole enumerates supported roles. GlobalAdmin is never stored on a church user.
type UserRole string

const (
	RoleUsher        UserRole = "USHER"
	RoleAdmin        UserRole = "ADMIN"
	RoleAccountOwner UserRole = "ACCOUNT_OWNER"
	RoleGlobalAdmin  UserRole = "GLOBAL_ADMIN"
)

var roleRank = map[UserRole]int{
	RoleUsher:        1,
	RoleAdmin:        2,
	RoleAccountOwner: 3,
}

// Valid reports whether r is a church-scoped role.
func (r UserRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants every permission of min.
func (r UserRole) AtLeast(min UserRole) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	return have >= roleRank[min]
}

// User represents an authenticated church account.
type User struct {
	ID               string
	ChurchID         string
	Email            string
	PasswordHash     string
	FirstName        string
	LastName         string
	Role             UserRole
	IsActive         bool
	LastLoginAt      *time.Time
	LastLoginCountry string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FullName joins first and last name.
func (u User) FullName() string {
	return joinName(u.FirstName, u.LastName)
}

// GlobalAdmin is a cross-tenant operator account.
type GlobalAdmin struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
}

// Registration carries the data for a new church and its account owner.
type Registration struct {
	ChurchName string
	Email      string
	Password   string
	FirstName  string
	LastName   string
	TrialEnds  time.Time
}

// PasswordReset is a one-time token issued to a user.
type PasswordReset struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	UsedAt    *time.Time
}
