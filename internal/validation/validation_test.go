package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "timebank42", false},
		{"Exactly Min Length", "abcdefg1", false},
		{"Too Short", "abc1", true},
		{"Too Long", strings.Repeat("a", 128) + "1", true},
		{"No Digit", "timebanking", true},
		{"No Letter", "1234567890", true},
		{"Unicode Letters", "Ångström99", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	// 254 chars total: 64 local + @ + 185 domain label + ".com" (4)
	emailAt254 := strings.Repeat("a", 64) + "@" + strings.Repeat("b", 185) + ".com"
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "test@example.com", false},
		{"Subdomain", "asha@mail.example.co.in", false},
		{"Exactly 254 Characters", emailAt254, false},
		{"Too Long", "a" + emailAt254, true},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"Multiple At Symbols", "user@@example.com", true},
		{"Space In Local Part", "user @example.com", true},
		{"Trailing Dot In Domain", "user@example.com.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFullNameAndCity(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateFullName("Asha Rao"))
	assert.Error(t, ValidateFullName("   "))
	assert.Error(t, ValidateFullName(strings.Repeat("x", MaxFullNameLen+1)))

	assert.NoError(t, ValidateCity("Pune"))
	assert.Error(t, ValidateCity(""))
	assert.Error(t, ValidateBio(strings.Repeat("x", MaxBioLen+1)))
}

func TestNormalizeSkills(t *testing.T) {
	t.Parallel()
	got, err := NormalizeSkills([]string{" Cooking ", "", "cooking", "Gardening"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cooking", "Gardening"}, got)

	_, err = NormalizeSkills([]string{strings.Repeat("s", MaxSkillLen+1)})
	assert.Error(t, err)

	many := make([]string, MaxSkills+1)
	for i := range many {
		many[i] = strings.Repeat("k", i+1)
	}
	_, err = NormalizeSkills(many)
	assert.Error(t, err)
}

func TestNormalizeTimeSlots(t *testing.T) {
	t.Parallel()
	got, err := NormalizeTimeSlots([]string{"weekend mornings", " Weekday Evenings ", "", "Weekend Mornings"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Weekend Mornings", "Weekday Evenings"}, got)

	got, err = NormalizeTimeSlots(TimeSlots)
	require.NoError(t, err)
	assert.Len(t, got, 6)

	_, err = NormalizeTimeSlots([]string{"Weekday Mornings", "Midnight"})
	assert.ErrorContains(t, err, "Midnight")

	got, err = NormalizeTimeSlots([]string{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestValidateMessageAndTaskText(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateMessageText("hello"))
	assert.Error(t, ValidateMessageText(" \n "))
	assert.Error(t, ValidateMessageText(strings.Repeat("m", MaxMessageLen+1)))

	assert.NoError(t, ValidateTaskText("Walk my dog", ""))
	assert.Error(t, ValidateTaskText("", "desc"))
	assert.Error(t, ValidateTaskText(strings.Repeat("t", MaxTitleLen+1), ""))
}
