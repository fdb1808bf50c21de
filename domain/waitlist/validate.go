package waitlist

import (
	"strings"
	"unicode"

	"github.com/zerovacancy/zerovacancy/pkg/apperror"
)

const (
	maxEmailLength  = 254
	maxSourceLength = 64
	maxMetadataKeys = 32
)

// ValidateEmail trims and lower-cases email and checks its shape: exactly one
// "@", non-empty local and domain parts, a dot inside the domain, and no
// whitespace. The signup form's script applies the same rule before posting.
func ValidateEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))

	switch {
	case e == "":
		return "", apperror.NewBadRequest("email is required")
	case len(e) > maxEmailLength:
		return "", apperror.NewBadRequest("email must be at most 254 characters")
	case strings.IndexFunc(e, unicode.IsSpace) >= 0:
		return "", apperror.NewBadRequest("email must not contain spaces")
	}

	local, domain, ok := strings.Cut(e, "@")
	if !ok || strings.Contains(domain, "@") {
		return "", apperror.NewBadRequest("email must contain a single @")
	}
	if local == "" || domain == "" {
		return "", apperror.NewBadRequest("email is missing a name or domain")
	}
	dot := strings.LastIndexByte(domain, '.')
	if dot <= 0 || dot == len(domain)-1 || strings.Contains(domain, "..") {
		return "", apperror.NewBadRequest("email domain is not valid")
	}

	return e, nil
}

// normalizeSource trims source, falling back to def. Only letters, digits,
// '-', '_' and '.' are kept.
func normalizeSource(source, def string) string {
	s := strings.TrimSpace(source)
	if s == "" {
		return def
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
	if s == "" {
		return def
	}
	if len(s) > maxSourceLength {
		s = s[:maxSourceLength]
	}
	return s
}

func validateMetadata(m map[string]any) error {
	if len(m) > maxMetadataKeys {
		return apperror.NewBadRequest("metadata has too many keys")
	}
	return nil
}
