// Package synth produces the random person, restaurant and free-text
// values the generator and simulator insert. Values come from embedded
// word lists; there is no persistent state beyond the random source.
package synth

import (
	"fmt"
	"math/rand"
	"strings"
)

var firstNames = []string{
	"Anna", "Boris", "Clara", "Dmitri", "Elena", "Felix", "Galina", "Henry",
	"Irina", "Jonas", "Katya", "Leon", "Marta", "Nikolai", "Olga", "Pavel",
	"Rosa", "Sergei", "Tatiana", "Viktor", "Wanda", "Yuri", "Zoya", "Max",
}

var lastNames = []string{
	"Ivanov", "Petrov", "Smirnov", "Kuznetsov", "Popov", "Volkov", "Fedorov",
	"Morozov", "Novikov", "Sokolov", "Lebedev", "Kozlov", "Pavlov", "Orlov",
	"Weber", "Schneider", "Fischer", "Keller", "Vogel", "Brandt",
}

var companyWords = []string{
	"Golden", "Silver", "Old", "Royal", "Little", "Grand", "Green", "White",
	"Corner", "Garden", "River", "Harbor", "Sunset", "Maple", "Cedar",
}

var companySuffixes = []string{
	"Kitchen", "Bistro", "House", "Tavern", "Grill", "Table", "Cellar",
	"Terrace", "Diner", "Cantina", "Brasserie", "Trattoria",
}

var streets = []string{
	"Main Street", "Oak Avenue", "River Road", "Park Lane", "Market Square",
	"Garden Street", "Hill Road", "Station Street", "Bridge Avenue",
	"Mill Lane", "Church Street", "Harbor Way",
}

var cities = []string{
	"Riverton", "Oakfield", "Greenwood", "Hillsboro", "Lakeside",
	"Maplewood", "Fairview", "Springdale", "Brookhaven", "Westport",
}

var cuisines = []string{
	"Italian", "Chinese", "Mexican", "Japanese", "French", "Indian",
}

var dishWords = []string{
	"roasted", "grilled", "braised", "smoked", "spicy", "creamy", "stuffed",
	"glazed", "crispy", "marinated", "seared", "baked",
}

var dishNouns = []string{
	"chicken", "salmon", "beef", "dumplings", "noodles", "risotto", "soup",
	"salad", "ribs", "tofu", "lamb", "pasta", "curry", "tacos",
}

var commentWords = []string{
	"lovely", "service", "food", "atmosphere", "waiter", "portion", "wine",
	"dessert", "table", "evening", "staff", "menu", "price", "flavor",
	"excellent", "slow", "friendly", "cozy", "noisy", "fresh", "cold",
	"recommended", "disappointing", "generous", "overpriced", "delightful",
}

var emailDomains = []string{
	"example.com", "mail.test", "inbox.dev", "post.example",
}

// Provider draws synthetic values from its own random source so runs
// can be seeded deterministically in tests.
type Provider struct {
	rnd *rand.Rand
}

// New creates a Provider with the given seed.
func New(seed int64) *Provider {
	return &Provider{rnd: rand.New(rand.NewSource(seed))} //nolint:gosec // synthetic data only
}

func (p *Provider) pick(list []string) string {
	return list[p.rnd.Intn(len(list))]
}

// Name returns a random person name.
func (p *Provider) Name() string {
	return p.pick(firstNames) + " " + p.pick(lastNames)
}

// Company returns a random restaurant name.
func (p *Provider) Company() string {
	return p.pick(companyWords) + " " + p.pick(companySuffixes)
}

// Address returns a random single-line street address.
func (p *Provider) Address() string {
	return fmt.Sprintf("%d %s, %s", 1+p.rnd.Intn(200), p.pick(streets), p.pick(cities))
}

// Cuisine returns a random cuisine label.
func (p *Provider) Cuisine() string {
	return p.pick(cuisines)
}

// DishName returns a random two-word dish name.
func (p *Provider) DishName() string {
	w := p.pick(dishWords)
	return strings.ToUpper(w[:1]) + w[1:] + " " + p.pick(dishNouns)
}

// Phone returns a random digits-only phone-like string.
func (p *Provider) Phone() string {
	digits := make([]byte, 10)
	for i := range digits {
		digits[i] = byte('0' + p.rnd.Intn(10))
	}

	return string(digits)
}

// Email returns a random email-like string.
func (p *Provider) Email() string {
	return fmt.Sprintf("%s%d@%s",
		strings.ToLower(p.pick(firstNames)), p.rnd.Intn(1000), p.pick(emailDomains))
}

// Comment returns random free text of roughly maxLen characters or less.
func (p *Provider) Comment(maxLen int) string {
	var b strings.Builder
	for b.Len() < maxLen {
		word := p.pick(commentWords)
		if b.Len()+len(word)+1 > maxLen {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
	}

	if b.Len() == 0 {
		return "ok"
	}

	return b.String()
}

// Price returns a random dish price between 5.00 and 100.00.
func (p *Provider) Price() float64 {
	return float64(500+p.rnd.Intn(9501)) / 100
}

// Rating returns a random review rating between 1 and 5.
func (p *Provider) Rating() int {
	return 1 + p.rnd.Intn(5)
}

// PickInt returns a uniformly random element of vals.
func (p *Provider) PickInt(vals []int) int {
	return vals[p.rnd.Intn(len(vals))]
}

// PickString returns a uniformly random element of vals.
func (p *Provider) PickString(vals []string) string {
	return vals[p.rnd.Intn(len(vals))]
}

// Intn returns a random int in [0, n).
func (p *Provider) Intn(n int) int {
	return p.rnd.Intn(n)
}

// Float64 returns a random float in [0, 1).
func (p *Provider) Float64() float64 {
	return p.rnd.Float64()
}
