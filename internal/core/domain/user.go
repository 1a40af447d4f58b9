package domain

import (
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	MinPasswordLength = 7
	forbiddenPassword = "password"
)

// UserUpdatableFields is the closed set of keys accepted by a profile update.
var UserUpdatableFields = []string{"name", "email", "password", "age"}

var validate = validator.New()

// User models a registered account. PasswordHash, Tokens and Avatar never
// leave the process in JSON form.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Age          int       `json:"age"`
	PasswordHash string    `json:"-"`
	Avatar       []byte    `json:"-"`
	Tokens       []string  `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasToken reports whether token is one of the user's active sessions.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// NewUser validates registration input and returns a user without a
// password hash. The caller hashes the returned plaintext before persisting.
func NewUser(name, email, password string, age int) (*User, string, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, "", err
	}
	email, err = NormalizeEmail(email)
	if err != nil {
		return nil, "", err
	}
	password, err = NormalizePassword(password)
	if err != nil {
		return nil, "", err
	}
	if err := ValidateAge(age); err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	return &User{
		Name:      name,
		Email:     email,
		Age:       age,
		Tokens:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}, password, nil
}

func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "is required")
	}
	return name, nil
}

func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalid("email", "is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", invalid("email", "is invalid")
	}
	return email, nil
}

func NormalizePassword(password string) (string, error) {
	password = strings.TrimSpace(password)
	if len(password) < MinPasswordLength {
		return "", invalid("password", "must be at least %d characters", MinPasswordLength)
	}
	if strings.Contains(strings.ToLower(password), forbiddenPassword) {
		return "", invalid("password", "cannot contain %q", forbiddenPassword)
	}
	return password, nil
}

func ValidateAge(age int) error {
	if age < 0 {
		return invalid("age", "must be a positive number")
	}
	return nil
}

// UserUpdate holds the parsed, validated fields of a profile update. Password
// is still plaintext here.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// UserChanges is what the store applies: UserUpdate with the password
// already hashed.
type UserChanges struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Age          *int
}

// ParseUserUpdate checks every key against UserUpdatableFields before looking
// at any value, then type-checks and normalizes each present field. Values
// come from a decoded JSON object, so numbers arrive as float64.
func ParseUserUpdate(fields map[string]any) (UserUpdate, error) {
	var upd UserUpdate
	if err := checkAllowed(fields, UserUpdatableFields); err != nil {
		return upd, err
	}

	for key, raw := range fields {
		switch key {
		case "name":
			s, ok := raw.(string)
			if !ok {
				return upd, invalid(key, "must be a string")
			}
			name, err := NormalizeName(s)
			if err != nil {
				return upd, err
			}
			upd.Name = &name
		case "email":
			s, ok := raw.(string)
			if !ok {
				return upd, invalid(key, "must be a string")
			}
			email, err := NormalizeEmail(s)
			if err != nil {
				return upd, err
			}
			upd.Email = &email
		case "password":
			s, ok := raw.(string)
			if !ok {
				return upd, invalid(key, "must be a string")
			}
			pw, err := NormalizePassword(s)
			if err != nil {
				return upd, err
			}
			upd.Password = &pw
		case "age":
			age, err := intValue(key, raw)
			if err != nil {
				return upd, err
			}
			if err := ValidateAge(age); err != nil {
				return upd, err
			}
			upd.Age = &age
		}
	}
	return upd, nil
}

// Apply copies the changes onto u. Used to build the response without a
// second read.
func (c UserChanges) Apply(u *User) {
	if c.Name != nil {
		u.Name = *c.Name
	}
	if c.Email != nil {
		u.Email = *c.Email
	}
	if c.PasswordHash != nil {
		u.PasswordHash = *c.PasswordHash
	}
	if c.Age != nil {
		u.Age = *c.Age
	}
}

func checkAllowed(fields map[string]any, allowed []string) error {
	for key := range fields {
		ok := false
		for _, a := range allowed {
			if key == a {
				ok = true
				break
			}
		}
		if !ok {
			return &ValidationError{Message: ErrInvalidUpdates.Error(), cause: ErrInvalidUpdates}
		}
	}
	return nil
}

func intValue(field string, raw any) (int, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return 0, invalid(field, "must be an integer")
		}
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, invalid(field, "must be an integer")
	}
}
