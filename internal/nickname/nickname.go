// Package nickname validates user nicknames and checks their availability.
package nickname

import (
	"context"
	"regexp"

	"syllabye/internal/model"

	"github.com/go-playground/validator/v10"
)

// Tag is the validator tag for nickname fields.
const Tag = "nickname"

var pattern = regexp.MustCompile(`^[a-z0-9._-]{3,30}$`)

const (
	MsgInvalid   = "Username is invalid"
	MsgCurrent   = "This is your current username"
	MsgTaken     = "Username already exists"
	MsgAvailable = "Username is available!"
	MsgFailed    = "Something went wrong, please try again later"
)

// Result is the verdict on a nickname. Format is true when the verdict came
// from local format validation rather than the backend.
type Result struct {
	Valid   bool   `json:"valid"`
	Format  bool   `json:"format"`
	Message string `json:"message"`
}

// ExistenceChecker asks the backend whether a nickname is taken.
type ExistenceChecker interface {
	NicknameExists(ctx context.Context, cookie, search string) (*model.NicknameExists, error)
}

// RegisterValidation adds the nickname tag to v.
func RegisterValidation(v *validator.Validate) error {
	return v.RegisterValidation(Tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	})
}

// NewValidate returns a validator with the nickname tag registered.
func NewValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterValidation(v); err != nil {
		panic(err)
	}
	return v
}

// ValidFormat reports whether the nickname passes the local rules:
// 3 to 30 characters of lowercase letters, digits, '.', '_' or '-'.
func ValidFormat(v *validator.Validate, nickname string) bool {
	return v.Var(nickname, "required,min=3,max=30,"+Tag) == nil
}

// Evaluate runs the full check synchronously. Invalid nicknames and the
// user's current nickname never reach the backend.
func Evaluate(ctx context.Context, v *validator.Validate, src ExistenceChecker, cookie, nickname, current string) Result {
	if !ValidFormat(v, nickname) {
		return Result{Valid: false, Format: true, Message: MsgInvalid}
	}
	if current != "" && nickname == current {
		return Result{Valid: true, Message: MsgCurrent}
	}
	exists, err := src.NicknameExists(ctx, cookie, nickname)
	if err != nil || exists == nil {
		return Result{Valid: false, Message: MsgFailed}
	}
	if exists.Exists {
		return Result{Valid: false, Message: MsgTaken}
	}
	return Result{Valid: true, Message: MsgAvailable}
}
