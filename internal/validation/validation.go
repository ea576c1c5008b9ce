// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxFullNameLen = 80
	MaxCityLen     = 60
	MaxBioLen      = 500
	MaxSkills      = 20
	MaxSkillLen    = 40
	MaxMessageLen  = 2000
	MaxTitleLen    = 120
	MaxDescLen     = 4000
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]{2,}$`)
	digitRegex = regexp.MustCompile(`[0-9]`)
)

// ValidatePassword checks if a password meets the signup requirements
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}

	hasLetter := false
	for _, r := range password {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return fmt.Errorf("password must contain at least one letter")
	}
	if !digitRegex.MatchString(password) {
		return fmt.Errorf("password must contain at least one digit")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateFullName requires a non-blank display name.
func ValidateFullName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("full name is required")
	}
	if utf8.RuneCountInString(name) > MaxFullNameLen {
		return fmt.Errorf("full name must not exceed %d characters", MaxFullNameLen)
	}
	return nil
}

// ValidateCity requires a non-blank city.
func ValidateCity(city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return fmt.Errorf("city is required")
	}
	if utf8.RuneCountInString(city) > MaxCityLen {
		return fmt.Errorf("city must not exceed %d characters", MaxCityLen)
	}
	return nil
}

func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLen {
		return fmt.Errorf("bio must not exceed %d characters", MaxBioLen)
	}
	return nil
}

// NormalizeSkills trims, drops blanks and duplicates (case-insensitive) and
// enforces the skill limits.
func NormalizeSkills(skills []string) ([]string, error) {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if utf8.RuneCountInString(s) > MaxSkillLen {
			return nil, fmt.Errorf("skill %q must not exceed %d characters", s, MaxSkillLen)
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	if len(out) > MaxSkills {
		return nil, fmt.Errorf("at most %d skills are allowed", MaxSkills)
	}
	return out, nil
}

// TimeSlots are the availability windows a profile may list.
var TimeSlots = []string{
	"Weekday Mornings",
	"Weekday Afternoons",
	"Weekday Evenings",
	"Weekend Mornings",
	"Weekend Afternoons",
	"Weekend Evenings",
}

// NormalizeTimeSlots maps slots onto TimeSlots, case-insensitively, dropping
// blanks and duplicates. Unknown slots are rejected.
func NormalizeTimeSlots(slots []string) ([]string, error) {
	out := make([]string, 0, len(slots))
	seen := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		slot, ok := canonicalSlot(s)
		if !ok {
			return nil, fmt.Errorf("unknown time slot %q", s)
		}
		if _, dup := seen[slot]; dup {
			continue
		}
		seen[slot] = struct{}{}
		out = append(out, slot)
	}
	return out, nil
}

func canonicalSlot(s string) (string, bool) {
	for _, slot := range TimeSlots {
		if strings.EqualFold(slot, s) {
			return slot, true
		}
	}
	return "", false
}

// ValidateMessageText checks chat and community message bodies.
func ValidateMessageText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("message text is required")
	}
	if utf8.RuneCountInString(text) > MaxMessageLen {
		return fmt.Errorf("message must not exceed %d characters", MaxMessageLen)
	}
	return nil
}

// ValidateTaskText checks the free-text task fields.
func ValidateTaskText(title, description string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return fmt.Errorf("title must not exceed %d characters", MaxTitleLen)
	}
	if utf8.RuneCountInString(description) > MaxDescLen {
		return fmt.Errorf("description must not exceed %d characters", MaxDescLen)
	}
	return nil
}
