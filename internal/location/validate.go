package location

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmpty is returned for a location that is blank after trimming.
	ErrEmpty = errors.New("location is required")
	// ErrTooLong is returned for a location longer than MaxInputLength characters.
	ErrTooLong = errors.New("location must be " + strconv.Itoa(MaxInputLength) + " characters or fewer")
)

var (
	validate = validator.New()
	rules    = "required,max=" + strconv.Itoa(MaxInputLength)
)

// Validate checks the preconditions of Resolve on the trimmed input: it must
// be non-empty and at most MaxInputLength characters.
func Validate(raw string) error {
	err := validate.Var(strings.TrimSpace(raw), rules)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "max" {
		return ErrTooLong
	}
	return ErrEmpty
}
