package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

type industry struct {
	name string
	subs []string
}

var industries = []industry{
	{"Technology", []string{"Software", "Hardware", "IT Services", "Cybersecurity", "Cloud Computing", "AI/ML"}},
	{"Healthcare", []string{"Pharmaceuticals", "Medical Devices", "Healthcare Services", "Biotechnology", "Telemedicine"}},
	{"Finance", []string{"Banking", "Insurance", "Investment", "Fintech", "Asset Management"}},
	{"Retail", []string{"E-commerce", "Fashion", "Consumer Electronics", "Grocery", "Department Stores"}},
	{"Manufacturing", []string{"Automotive", "Aerospace", "Industrial Equipment", "Consumer Goods", "Electronics"}},
	{"Energy", []string{"Oil & Gas", "Renewable Energy", "Utilities", "Clean Tech", "Mining"}},
	{"Real Estate", []string{"Commercial", "Residential", "Property Management", "REITs", "Construction"}},
	{"Education", []string{"Higher Education", "EdTech", "K-12", "Professional Training", "Online Learning"}},
	{"Entertainment", []string{"Media", "Gaming", "Streaming", "Sports", "Music"}},
	{"Transportation", []string{"Logistics", "Airlines", "Shipping", "Ride-sharing", "Automotive"}},
	{"Agriculture", []string{"Farming", "AgTech", "Food Processing", "Livestock", "Forestry"}},
	{"Professional Services", []string{"Consulting", "Legal", "Accounting", "Marketing", "HR Services"}},
}

var companyTypes = []string{"Public", "Private", "Startup", "Non-profit", "Government", "Enterprise"}

// Company generates business/organization profiles.
type Company struct {
	fake    *gofakeit.Faker
	anchor  time.Time
	country string
}

// NewCompany builds the company profile generator. Date fields anchor to the
// start of the current UTC day so a seed reproduces identical records.
func NewCompany(fake *gofakeit.Faker, country string) *Company {
	return &Company{fake: fake, anchor: time.Now().UTC().Truncate(24 * time.Hour), country: country}
}

func (g *Company) Name() string { return "company" }

func (g *Company) Description() string {
	return "Company/Business data with industry, financials, headcount, and contact information"
}

func (g *Company) Fields() []Field {
	return []Field{
		{Name: "id", Type: "uuid", Description: "Unique identifier", Example: "123e4567-e89b-12d3-a456-426614174000"},
		{Name: "company_name", Type: "string", Description: "Registered company name", Example: "Acme Technologies Inc."},
		{Name: "trading_name", Type: "string", Description: "Trading/brand name", Example: "Acme"},
		{Name: "industry", Type: "string", Description: "Primary industry", Example: "Technology"},
		{Name: "sub_industry", Type: "string", Description: "Industry segment", Example: "Software"},
		{Name: "company_type", Type: "string", Description: "Ownership type", Example: "Private"},
		{Name: "founded_year", Type: "integer", Description: "Year founded", Example: 2008},
		{Name: "employee_count", Type: "integer", Description: "Number of employees", Example: 250},
		{Name: "size_category", Type: "string", Description: "Size bucket", Example: "Medium"},
		{Name: "annual_revenue", Type: "float", Description: "Annual revenue in USD", Example: 45000000.00},
		{Name: "revenue_growth_percent", Type: "float", Description: "Year-over-year revenue growth", Example: 12.5},
		{Name: "market_cap", Type: "float", Description: "Market capitalization (public companies only)", Example: 120000000.00},
		{Name: "stock_symbol", Type: "string", Description: "Ticker symbol (public companies only)", Example: "ACME"},
		{Name: "stock_exchange", Type: "string", Description: "Listing exchange (public companies only)", Example: "NASDAQ"},
		{Name: "headquarters_address", Type: "string", Description: "HQ address", Example: "123 Main Street, New York, NY 10001"},
		{Name: "headquarters_city", Type: "string", Description: "HQ city", Example: "New York"},
		{Name: "headquarters_country", Type: "string", Description: "HQ country", Example: "United States"},
		{Name: "website", Type: "string", Description: "Company website", Example: "https://www.acme.com"},
		{Name: "email", Type: "string", Description: "Contact email", Example: "info@acme.com"},
		{Name: "phone", Type: "string", Description: "Contact phone", Example: "+1-555-123-4567"},
		{Name: "ceo_name", Type: "string", Description: "Chief executive", Example: "Jane Smith"},
		{Name: "description", Type: "string", Description: "Company description", Example: "Leading software company."},
		{Name: "is_active", Type: "boolean", Description: "Whether the company is operating", Example: true},
		{Name: "created_at", Type: "datetime", Description: "Record creation timestamp", Example: "2024-01-15T10:30:00Z"},
	}
}

func (g *Company) Generate() (Record, error) {
	ind := industries[g.fake.Number(0, len(industries)-1)]
	subIndustry := ind.subs[g.fake.Number(0, len(ind.subs)-1)]

	suffix := g.fake.RandomString([]string{"Inc.", "Corp.", "LLC", "Ltd.", "Co.", "Group", "Holdings", "Technologies", "Solutions"})
	base := strings.Fields(g.fake.Company())[0]

	var companyName string
	switch g.fake.Number(0, 3) {
	case 0:
		companyName = base + " " + suffix
	case 1:
		companyName = base + " " + subIndustry + " " + suffix
	case 2:
		companyName = g.fake.LastName() + " & " + g.fake.LastName() + " " + suffix
	default:
		qualifier := g.fake.RandomString([]string{"Global", "International", "Digital", "Advanced"})
		companyName = base + " " + qualifier + " " + suffix
	}

	tradingName := base
	if g.fake.Number(1, 10) <= 3 {
		tradingName = strings.Fields(companyName)[0]
	}

	companyType := companyTypes[weightedIndex(g.fake, []int{15, 40, 20, 10, 5, 10})]

	currentYear := g.anchor.Year()
	var foundedYear int
	switch roll := g.fake.Number(1, 100); {
	case roll <= 30:
		foundedYear = g.fake.Number(currentYear-10, currentYear-1)
	case roll <= 60:
		foundedYear = g.fake.Number(currentYear-30, currentYear-10)
	default:
		foundedYear = g.fake.Number(1900, currentYear-30)
	}

	var employees int
	switch companyType {
	case "Startup":
		employees = g.fake.Number(2, 200)
	case "Enterprise":
		employees = g.fake.Number(1000, 100000)
	default:
		// Skewed toward small shops, long tail of large ones.
		employees = g.fake.Number(1, 50) * g.fake.Number(1, 40)
	}

	revenuePerEmployee := g.fake.Float64Range(80000, 500000)
	annualRevenue := round2(float64(employees) * revenuePerEmployee)

	growth := clampFloat(g.fake.Float64Range(-22, 38), -50, 100)

	var marketCap, stockSymbol, stockExchange any
	if companyType == "Public" {
		peRatio := g.fake.Float64Range(10, 40)
		marketCap = round2(annualRevenue * peRatio / 10)
		stockSymbol = stockSymbolFor(companyName)
		stockExchange = g.fake.RandomString([]string{"NYSE", "NASDAQ", "LSE", "TSE"})
	}

	city := g.fake.City()
	domain := strings.ReplaceAll(strings.ToLower(tradingName), " ", "") + ".com"

	return Record{
		"id":                     g.fake.UUID(),
		"company_name":           companyName,
		"trading_name":           tradingName,
		"industry":               ind.name,
		"sub_industry":           subIndustry,
		"company_type":           companyType,
		"founded_year":           foundedYear,
		"employee_count":         employees,
		"size_category":          sizeCategory(employees),
		"annual_revenue":         annualRevenue,
		"revenue_growth_percent": round2(growth),
		"market_cap":             marketCap,
		"stock_symbol":           stockSymbol,
		"stock_exchange":         stockExchange,
		"headquarters_address":   fmt.Sprintf("%s, %s, %s %s", g.fake.Street(), city, g.fake.StateAbr(), g.fake.Zip()),
		"headquarters_city":      city,
		"headquarters_country":   g.country,
		"website":                "https://www." + domain,
		"email":                  "info@" + domain,
		"phone":                  g.fake.PhoneFormatted(),
		"ceo_name":               g.fake.Name(),
		"description":            fmt.Sprintf("Leading %s company specializing in %s.", strings.ToLower(subIndustry), g.fake.BS()),
		"is_active":              g.fake.Number(1, 20) > 1,
		"created_at":             g.fake.DateRange(g.anchor.AddDate(-2, 0, 0), g.anchor),
	}, nil
}

func sizeCategory(employees int) string {
	switch {
	case employees < 10:
		return "Micro"
	case employees < 50:
		return "Small"
	case employees < 250:
		return "Medium"
	case employees < 1000:
		return "Large"
	default:
		return "Enterprise"
	}
}

func stockSymbolFor(name string) string {
	letters := make([]rune, 0, 4)
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, r)
		}
		if len(letters) == 4 {
			break
		}
	}
	if len(letters) == 0 {
		return "XXXX"
	}
	return string(letters)
}

func weightedIndex(fake *gofakeit.Faker, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := fake.Number(1, total)
	for i, w := range weights {
		roll -= w
		if roll <= 0 {
			return i
		}
	}
	return len(weights) - 1
}
