package seed

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"timebank/internal/models"
	"timebank/internal/service"
	"timebank/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// Cities seeded accounts and tasks are spread across.
var Cities = []string{"pune", "mumbai", "bengaluru", "delhi", "chennai"}

// SkillPool is sampled for profile skill tags.
var SkillPool = []string{
	"cooking", "gardening", "tutoring", "yoga", "guitar", "painting",
	"plumbing", "excel", "photography", "hindi", "english", "dog walking",
}

var taskTitles = map[string][]string{
	"Tech Support":      {"Set up a new laptop", "Fix home wifi", "Excel formulas help"},
	"Home Help":         {"Help moving furniture", "Fix a leaking tap", "Plumbing check"},
	"Teaching/Tutoring": {"Maths tutoring for class 8", "English conversation practice", "Guitar basics"},
	"Creative Work":     {"Design a birthday card", "Photography for a small event", "Painting a mural"},
	"Administrative":    {"Fill out a visa form", "Organize receipts"},
	"Gardening":         {"Balcony gardening setup", "Prune the hedge"},
	"Pet Care":          {"Dog walking this weekend", "Feed my cat for two days"},
	"Cooking":           {"Cooking lesson: dal and rice", "Bake a cake together"},
	"Language Practice": {"Hindi speaking partner", "Marathi basics"},
	"Fitness/Sports":    {"Morning yoga partner", "Teach me to swim"},
	"Other":             {"Company for a museum visit"},
}

// Factory builds demo entities. Users are inserted directly; everything with
// workflow rules goes through the services.
type Factory struct {
	db     *gorm.DB
	opts   Options
	faker  *gofakeit.Faker
	hash   string
	nextID uint
}

// NewFactory creates a Factory bound to db. opts.Seed makes the output
// reproducible.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, opts: opts, faker: gofakeit.New(seed), nextID: 1000}
}

func (f *Factory) password() string {
	if f.opts.SkipBcrypt {
		return DemoPassword
	}
	if f.hash == "" {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		f.hash = string(hashed)
	}
	return f.hash
}

func (f *Factory) skills() []string {
	n := f.faker.Number(1, 3)
	out := make([]string, 0, n)
	seen := map[string]bool{}
	for len(out) < n {
		s := f.faker.RandomString(SkillPool)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func (f *Factory) timeSlots() []string {
	var out []string
	for _, slot := range validation.TimeSlots {
		if f.faker.Number(0, 2) == 0 {
			out = append(out, slot)
		}
	}
	if len(out) == 0 {
		out = append(out, f.faker.RandomString(validation.TimeSlots))
	}
	return out
}

// BuildUser returns an unsaved account of kind with its starting balance.
func (f *Factory) BuildUser(kind models.AccountKind) *models.User {
	name := f.faker.Name()
	if kind == models.AccountOrganization {
		name = f.faker.Company()
	}
	handle := strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '.'
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		}
		return -1
	}, name)
	return &models.User{
		FullName:           name,
		Email:              fmt.Sprintf("%s.%d@example.com", handle, f.faker.Number(100, 99999)),
		Password:           f.password(),
		AccountKind:        kind,
		TimeCredits:        kind.StartingCredits(),
		City:               f.faker.RandomString(Cities),
		Country:            models.DefaultCountry,
		Skills:             f.skills(),
		AvailableTimeSlots: f.timeSlots(),
		Bio:                f.faker.Sentence(10),
		PhotoURL:           fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		IsVerified:         kind == models.AccountOrganization && f.faker.Bool(),
	}
}

// CreateUser builds and persists a user. Overrides run before the insert.
func (f *Factory) CreateUser(kind models.AccountKind, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(kind)
	for _, override := range overrides {
		override(user)
	}
	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildTaskInput returns a plausible task in a random category.
func (f *Factory) BuildTaskInput() service.CreateTaskInput {
	category := f.faker.RandomString(models.TaskCategories)
	title := f.faker.RandomString(taskTitles[category])
	kind := models.TaskKindOffer
	if f.faker.Bool() {
		kind = models.TaskKindRequest
	}
	urgency := []string{string(models.UrgencyLow), string(models.UrgencyMedium), string(models.UrgencyHigh)}
	return service.CreateTaskInput{
		Title:        title,
		Description:  f.faker.Paragraph(1, 2, 12, " "),
		Category:     category,
		Kind:         kind,
		TimeRequired: models.TimeOptions[f.faker.Number(0, len(models.TimeOptions)-1)],
		Urgency:      models.Urgency(f.faker.RandomString(urgency)),
	}
}

// Chatter returns a short chat line.
func (f *Factory) Chatter() string {
	return f.faker.Sentence(f.faker.Number(3, 12))
}
