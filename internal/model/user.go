package model

// User is the backend profile of an authenticated user.
// NewUser is derived by this tier and never read from the backend.
type User struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Fullname    string  `json:"fullname"`
	Nickname    *string `json:"nickname,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	ProgramID   *string `json:"programId,omitempty"`
	CurrentYear *int    `json:"currentYear,omitempty"`
	Picture     string  `json:"picture"`
	Bio         *string `json:"bio,omitempty"`
	Instagram   *string `json:"instagram,omitempty"`
	NewUser     bool    `json:"newuser"`
}

// NicknameValue returns the nickname or "" when absent.
func (u *User) NicknameValue() string {
	if u == nil || u.Nickname == nil {
		return ""
	}
	return *u.Nickname
}

// DeriveNewUser marks users that have not picked a nickname yet.
func (u *User) DeriveNewUser() {
	u.NewUser = u.NicknameValue() == ""
}

// UserUpdate is a partial profile patch relayed to the backend.
type UserUpdate struct {
	Nickname    *string `json:"nickname,omitempty" validate:"omitempty,nickname"`
	Gender      *string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	ProgramID   *string `json:"programId,omitempty"`
	CurrentYear *int    `json:"currentYear,omitempty" validate:"omitempty,min=1,max=10"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Instagram   *string `json:"instagram,omitempty" validate:"omitempty,max=30"`
}

// NicknameExists is the backend answer to a nickname search.
type NicknameExists struct {
	Exists bool `json:"Exists"`
}
