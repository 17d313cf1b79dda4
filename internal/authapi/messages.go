package authapi

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	MsgInvalidInput     = "Eingaben prüfen – ungültige Anmeldedaten."
	MsgWrongCredentials = "E-Mail oder Passwort falsch."
	MsgForbidden        = "Zugriff verweigert."
	MsgServerError      = "Serverfehler. Bitte später erneut versuchen."
	MsgNoConnection     = "Keine Verbindung zum Server."
	MsgLoginFailed      = "Login fehlgeschlagen."
)

// UserMessage turns a login error into the text shown next to the form.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return MsgInvalidInput
		case http.StatusUnauthorized:
			return MsgWrongCredentials
		case http.StatusForbidden:
			return MsgForbidden
		case http.StatusInternalServerError:
			return MsgServerError
		case 0:
			return MsgNoConnection
		default:
			return MsgLoginFailed
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return MsgNoConnection
	}
	if errors.Is(err, ErrNoToken) {
		return err.Error()
	}
	return MsgLoginFailed
}

// FieldErrors maps a form field to its validation message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for _, field := range []string{"name", "email", "password", "confirmPassword", "firstName", "lastName", "terms", "message"} {
		if msg, ok := f[field]; ok {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "\n")
}

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

const MinPasswordLength = 6

func ValidateLogin(email, password string) error {
	errs := FieldErrors{}
	if !emailPattern.MatchString(email) {
		errs["email"] = "Bitte eine gültige E-Mail eingeben"
	}
	if len(password) < MinPasswordLength {
		errs["password"] = "Mindestens 6 Zeichen"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RegistrationForm struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	AgreeToTerms    bool
}

func (f RegistrationForm) Request() RegisterRequest {
	return RegisterRequest{
		Email:     strings.TrimSpace(f.Email),
		Password:  f.Password,
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
	}
}

func ValidateRegistration(f RegistrationForm) error {
	errs := FieldErrors{}
	if strings.TrimSpace(f.FirstName) == "" {
		errs["firstName"] = "Vorname fehlt"
	}
	if strings.TrimSpace(f.LastName) == "" {
		errs["lastName"] = "Nachname fehlt"
	}
	if !emailPattern.MatchString(f.Email) {
		errs["email"] = "Bitte eine gültige E-Mail eingeben"
	}
	if f.Password == "" {
		errs["password"] = "Passwort fehlt"
	}
	if f.Password != f.ConfirmPassword {
		errs["confirmPassword"] = "Passwörter stimmen nicht überein"
	}
	if !f.AgreeToTerms {
		errs["terms"] = "Bitte den Nutzungsbedingungen zustimmen"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ContactForm is a message to the shop team.
type ContactForm struct {
	Name    string
	Email   string
	Message string
}

func ValidateContact(f ContactForm) error {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "Name fehlt"
	}
	if !emailPattern.MatchString(f.Email) {
		errs["email"] = "Bitte eine gültige E-Mail eingeben"
	}
	if strings.TrimSpace(f.Message) == "" {
		errs["message"] = "Nachricht fehlt"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// TokenExpired reports whether token is a JWT whose exp lies before now.
// The signature is not checked; opaque tokens never expire here.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
