package domain

import (
	"crypto/rand"
	"crypto/subtle"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/scrypt"
)

var (
	// PasswordScryptN is the scrypt cost used for new password records. Existing
	// records keep the cost they were created with.
	PasswordScryptN = 1 << 15

	passwordScryptR = 8
	passwordScryptP = 1
	passwordKeyLen  = 32
	passwordSaltLen = 16

	minPasswordLength = 8
	maxPasswordLength = 20
)

// PasswordRecord is the persisted scrypt hash of the unlock password.
type PasswordRecord struct {
	Salt      []byte
	Hash      []byte
	N         int
	CreatedAt time.Time
}

// NewPasswordRecord validates the given password and returns its record.
func NewPasswordRecord(password string) (*PasswordRecord, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	salt := make([]byte, passwordSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	n := PasswordScryptN
	hash, err := hashPassword(password, salt, n)
	if err != nil {
		return nil, err
	}
	return &PasswordRecord{
		Salt:      salt,
		Hash:      hash,
		N:         n,
		CreatedAt: time.Now(),
	}, nil
}

// Verify returns whether the given password matches the record.
func (r *PasswordRecord) Verify(password string) bool {
	if r == nil || len(r.Hash) == 0 {
		return false
	}
	hash, err := hashPassword(password, r.Salt, r.N)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(hash, r.Hash) == 1
}

// ValidatePassword checks the password is 8 to 20 characters long and mixes
// at least two classes among digits, lowercase, uppercase and symbols.
func ValidatePassword(password string) error {
	l := utf8.RuneCountInString(password)
	if l < minPasswordLength || l > maxPasswordLength {
		return ErrWeakPassword
	}

	var hasDigit, hasLower, hasUpper, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		default:
			hasSymbol = true
		}
	}
	classes := 0
	for _, ok := range []bool{hasDigit, hasLower, hasUpper, hasSymbol} {
		if ok {
			classes++
		}
	}
	if classes < 2 {
		return ErrWeakPassword
	}
	return nil
}

func hashPassword(password string, salt []byte, n int) ([]byte, error) {
	return scrypt.Key(
		[]byte(password), salt, n, passwordScryptR, passwordScryptP,
		passwordKeyLen,
	)
}
