package auth

import "errors"

var (
	ErrEmailAlreadyInUse  = errors.New("email already in use")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotLogged          = errors.New("not logged in")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")

	// validation errors, detected before anything is sent further
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmailRequired    = errors.New("email required")
)

// MinPasswordLength is the shortest password accepted for new and existing accounts
const MinPasswordLength = 6

const (
	msgEmailInUse         = "Ten email jest już zarejestrowany"
	msgInvalidEmail       = "Nieprawidłowy adres email"
	msgInvalidCredentials = "Nieprawidłowy email lub hasło"
	msgPasswordMismatch   = "Hasła nie są identyczne"
	msgPasswordTooShort   = "Hasło musi mieć minimum 6 znaków"
	msgEmailRequired      = "Wpisz adres email"
	msgAccountNotFound    = "Nie znaleziono konta"
	msgInvalidResetToken  = "Link do resetu hasła wygasł"
	msgNotLogged          = "Zaloguj się, aby kontynuować"
	msgGeneric            = "Wystąpił błąd. Spróbuj ponownie."

	MsgResetLinkSent = "Link do resetu hasła wysłany!"
)

// MessageFor maps auth errors to the messages shown to the user.
// Anything unknown gets the generic one.
func MessageFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmailAlreadyInUse):
		return msgEmailInUse
	case errors.Is(err, ErrInvalidEmail):
		return msgInvalidEmail
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUserNotFound):
		return msgInvalidCredentials
	case errors.Is(err, ErrPasswordMismatch):
		return msgPasswordMismatch
	case errors.Is(err, ErrPasswordTooShort):
		return msgPasswordTooShort
	case errors.Is(err, ErrEmailRequired):
		return msgEmailRequired
	case errors.Is(err, ErrInvalidResetToken):
		return msgInvalidResetToken
	case errors.Is(err, ErrNotLogged):
		return msgNotLogged
	default:
		return msgGeneric
	}
}

// ResetMessageFor is MessageFor for the password reset form, where an unknown
// account is reported as such instead of as bad credentials.
func ResetMessageFor(err error) string {
	if errors.Is(err, ErrUserNotFound) {
		return msgAccountNotFound
	}
	return MessageFor(err)
}
