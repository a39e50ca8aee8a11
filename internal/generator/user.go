package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// User generates realistic person profiles.
type User struct {
	fake    *gofakeit.Faker
	anchor  time.Time
	country string
}

// NewUser builds the user profile generator. Date fields anchor to the start
// of the current UTC day so a seed reproduces identical records; country is
// the locale-derived value stamped onto every record.
func NewUser(fake *gofakeit.Faker, country string) *User {
	return &User{fake: fake, anchor: time.Now().UTC().Truncate(24 * time.Hour), country: country}
}

func (g *User) Name() string { return "user" }

func (g *User) Description() string {
	return "User/Person data with personal information including name, email, address, phone, and demographics"
}

func (g *User) Fields() []Field {
	return []Field{
		{Name: "id", Type: "uuid", Description: "Unique identifier", Example: "123e4567-e89b-12d3-a456-426614174000"},
		{Name: "first_name", Type: "string", Description: "First name", Example: "John"},
		{Name: "last_name", Type: "string", Description: "Last name", Example: "Doe"},
		{Name: "full_name", Type: "string", Description: "Full name", Example: "John Doe"},
		{Name: "email", Type: "string", Description: "Email address", Example: "john.doe@example.com"},
		{Name: "phone", Type: "string", Description: "Phone number", Example: "+1-555-123-4567"},
		{Name: "date_of_birth", Type: "date", Description: "Date of birth", Example: "1990-05-15"},
		{Name: "age", Type: "integer", Description: "Age in years", Example: 34},
		{Name: "gender", Type: "string", Description: "Gender", Example: "Male"},
		{Name: "street_address", Type: "string", Description: "Street address", Example: "123 Main Street"},
		{Name: "city", Type: "string", Description: "City", Example: "New York"},
		{Name: "state", Type: "string", Description: "State/Province", Example: "NY"},
		{Name: "postal_code", Type: "string", Description: "Postal/ZIP code", Example: "10001"},
		{Name: "country", Type: "string", Description: "Country", Example: "United States"},
		{Name: "username", Type: "string", Description: "Username", Example: "johndoe123"},
		{Name: "job_title", Type: "string", Description: "Job title", Example: "Software Engineer"},
		{Name: "company", Type: "string", Description: "Company name", Example: "Tech Corp"},
		{Name: "salary", Type: "float", Description: "Annual salary", Example: 85000.00},
		{Name: "created_at", Type: "datetime", Description: "Account creation timestamp", Example: "2024-01-15T10:30:00Z"},
		{Name: "is_active", Type: "boolean", Description: "Whether the user account is active", Example: true},
	}
}

func (g *User) Generate() (Record, error) {
	now := g.anchor

	// Birth date between 18 and 80 years back.
	years := 18 + g.fake.Number(0, 62)
	dob := now.AddDate(-years, 0, -g.fake.Number(0, 364))
	age := int(now.Sub(dob).Hours() / 24 / 365.25)

	gender := g.fake.RandomString([]string{"Male", "Female", "Non-binary", "Prefer not to say"})
	firstName := g.fake.FirstName()
	lastName := g.fake.LastName()

	email := fmt.Sprintf("%s.%s@%s",
		strings.ToLower(firstName), strings.ToLower(lastName), g.fake.DomainName())

	salary := clampFloat(g.fake.Float64Range(40000, 90000)+g.fake.Float64Range(-15000, 160000)*0.25, 25000, 250000)

	createdAt := g.fake.DateRange(now.AddDate(-5, 0, 0), now)

	return Record{
		"id":             g.fake.UUID(),
		"first_name":     firstName,
		"last_name":      lastName,
		"full_name":      firstName + " " + lastName,
		"email":          email,
		"phone":          g.fake.PhoneFormatted(),
		"date_of_birth":  dob.Format("2006-01-02"),
		"age":            age,
		"gender":         gender,
		"street_address": g.fake.Street(),
		"city":           g.fake.City(),
		"state":          g.fake.StateAbr(),
		"postal_code":    g.fake.Zip(),
		"country":        g.country,
		"username":       g.fake.Username(),
		"job_title":      g.fake.JobTitle(),
		"company":        g.fake.Company(),
		"salary":         round2(salary),
		"created_at":     createdAt,
		// 90% active accounts.
		"is_active": g.fake.Number(1, 10) > 1,
	}, nil
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
