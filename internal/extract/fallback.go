package extract

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bizvoice/intake/internal/profile"
)

// Regex extraction used when the Anthropic API is unavailable. Best effort
// only: fields that do not match stay empty and the user corrects them in
// the review phase.

var (
	pincodeRe = regexp.MustCompile(`\b(\d{6})\b`)
	gstRe     = regexp.MustCompile(`\b(\d{2}[A-Z]{5}\d{4}[A-Z][A-Z0-9]Z\d)\b`)
	emailRe   = regexp.MustCompile(`\b([a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})\b`)
	websiteRe = regexp.MustCompile(`\b((?:https?://|www\.)[a-zA-Z0-9.-]+\.[a-zA-Z]{2,})\b`)
	yearRe    = regexp.MustCompile(`\b(19\d{2}|20[0-2][0-4])\b`)
	phoneRe   = regexp.MustCompile(`\b(\d{10})\b`)

	personNameRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:my name is|i am|this is)\s+([a-zA-Z ]+?)(?:\s+(?:and|so|my|i)\b)`),
		regexp.MustCompile(`i'm\s+([a-zA-Z ]+?)(?:\s+(?:and|so|my)\b)`),
	}
	businessNameRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:my business is|i own|we are|business name is)\s+([a-zA-Z ]+?)(?:\s+(?:in|at|and|located|so|we)\b)`),
		regexp.MustCompile(`name\s+is\s+([a-zA-Z ]+?)(?:\s+(?:and|so)\b)`),
	}
	addressRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:located|address is|address)\s+(?:at\s+|in\s+)?([a-zA-Z0-9 ,]+?)(?:\s+(?:city|and|we|phone|state)\b)`),
	}
)

var knownStates = []string{
	"andhra pradesh", "arunachal pradesh", "assam", "bihar", "chhattisgarh",
	"goa", "gujarat", "haryana", "himachal pradesh", "jharkhand", "karnataka",
	"kerala", "madhya pradesh", "maharashtra", "manipur", "meghalaya",
	"mizoram", "nagaland", "odisha", "punjab", "rajasthan", "sikkim",
	"tamil nadu", "telangana", "tripura", "uttar pradesh", "uttarakhand",
	"west bengal", "chandigarh", "delhi",
}

var knownCities = []string{
	"chandigarh", "hyderabad", "bangalore", "delhi", "mumbai", "chennai",
	"kolkata", "pune", "jaipur", "lucknow", "ahmedabad", "surat", "nagpur",
	"indore", "bhopal", "patna", "vadodara", "ludhiana", "agra", "nashik",
	"meerut", "rajkot", "varanasi", "amritsar", "ranchi", "coimbatore",
	"gwalior", "vijayawada", "jodhpur", "madurai", "raipur", "kota",
	"guwahati", "mysore",
}

// Keyword order matters: first category whose keyword appears wins.
var businessCategories = []struct {
	name     string
	keywords []string
}{
	{"Retail", []string{"retail", "shop", "store", "grocery", "market", "supermarket"}},
	{"Food & Restaurant", []string{"food", "restaurant", "cafe", "hotel", "eatery", "sweet", "bakery"}},
	{"Services", []string{"service", "consulting", "repair", "maintenance"}},
	{"Manufacturing", []string{"manufacturing", "factory", "production"}},
	{"Healthcare", []string{"health", "medical", "hospital", "clinic", "pharmacy"}},
	{"Education", []string{"education", "school", "college", "tuition", "institute"}},
	{"Technology", []string{"tech", "software", "computer"}},
	{"Agriculture", []string{"agriculture", "farming", "crops", "seeds"}},
	{"Textile", []string{"textile", "clothing", "garments", "fashion"}},
	{"Automotive", []string{"automotive", "vehicle", "motor"}},
}

var yearContextWords = []string{"established", "founded", "started", "since", "year"}

var titleCaser = cases.Title(language.English)

// businessFallback extracts business fields from a transcript with regex
// and keyword matching.
func businessFallback(transcript string) *profile.Draft {
	draft := profile.NewDraft()
	lower := strings.ToLower(transcript)

	for _, state := range knownStates {
		if strings.Contains(lower, state) {
			draft.State = titleCaser.String(state)

			break
		}
	}

	for _, city := range knownCities {
		if strings.Contains(lower, city) {
			draft.City = titleCaser.String(city)

			break
		}
	}

	if m := pincodeRe.FindStringSubmatch(lower); m != nil {
		draft.Pincode = m[1]
	}
	if m := gstRe.FindStringSubmatch(strings.ToUpper(transcript)); m != nil {
		draft.GSTNumber = m[1]
	}
	if m := emailRe.FindStringSubmatch(lower); m != nil {
		draft.Email = m[1]
	}
	if m := websiteRe.FindStringSubmatch(lower); m != nil {
		draft.Website = m[1]
	}
	if m := phoneRe.FindStringSubmatch(lower); m != nil {
		draft.Phone = m[1]
	}

	// A bare 4-digit number is only an establishment year when the speech
	// carries context like "established" or "since".
	if m := yearRe.FindStringSubmatch(lower); m != nil {
		for _, word := range yearContextWords {
			if strings.Contains(lower, word) {
				draft.EstablishedYear = m[1]

				break
			}
		}
	}

	draft.PersonName = firstCapture(personNameRes, lower, 2, 50)
	draft.Name = firstCapture(businessNameRes, lower, 2, 50)
	draft.Address = firstCapture(addressRes, lower, 3, 100)

	for _, cat := range businessCategories {
		for _, keyword := range cat.keywords {
			if strings.Contains(lower, keyword) {
				draft.Category = cat.name

				break
			}
		}
		if draft.Category != "" {
			break
		}
	}

	for _, keyword := range []string{"vegetable", "fruit", "rice", "milk", "bread", "sweet", "snack"} {
		if len(draft.Products) == 3 {
			break
		}
		if strings.Contains(lower, keyword) {
			draft.Products = append(draft.Products, profile.Product{
				Name: titleCaser.String(keyword), Unit: "pcs", Quantity: 1,
			})
		}
	}

	return draft
}

func firstCapture(patterns []*regexp.Regexp, text string, minLen, maxLen int) string {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		value := strings.TrimSpace(m[1])
		if len(value) > minLen && len(value) < maxLen {
			return titleCaser.String(value)
		}
	}

	return ""
}

const maxFallbackProducts = 5

var productPatterns = []*regexp.Regexp{
	// "2 kg tomatoes 50 rupees"
	regexp.MustCompile(`(\d+)\s+(kg|grams|pcs|pieces|liter|litre|dozen|packet|bottle|box)\s+(\w+)\s+(?:at|@|for|rupees?|rs\.?)\s*(\d+)`),
	// "tomatoes 50 rupees per kg"
	regexp.MustCompile(`(\w+)\s+(?:at|@|for)\s*(\d+)\s+(?:rupees?\s+)?(?:per\s+)?(kg|grams|pcs|pieces|liter|litre|dozen|packet|bottle|box)`),
	// "2 kg tomatoes"
	regexp.MustCompile(`(\d+)\s+(kg|grams|pcs|pieces|liter|litre|dozen|packet|bottle|box)\s+(\w+)`),
	// "tomatoes at 50"
	regexp.MustCompile(`(\w+)\s+(?:at|@|for)\s+(\d+)`),
}

var productKeywords = []string{
	"tomato", "potato", "onion", "vegetable", "fruit", "rice", "wheat",
	"flour", "milk", "bread", "egg", "chicken", "fish", "sugar", "salt",
	"oil", "tea", "coffee", "butter", "cheese", "sweet", "snack",
	"chocolate", "biscuit", "soap", "shampoo", "toothpaste", "detergent",
	"paper", "pen",
}

var productCategories = []struct {
	name     string
	keywords []string
}{
	{"Food", []string{
		"tomato", "potato", "onion", "vegetable", "fruit", "rice", "wheat",
		"flour", "milk", "bread", "egg", "chicken", "fish", "sugar", "salt",
		"oil", "tea", "coffee", "butter", "cheese", "sweet", "snack",
		"chocolate", "biscuit",
	}},
	{"Electronics", []string{"phone", "laptop", "computer", "tablet", "camera", "speaker"}},
	{"Clothing", []string{"shirt", "pants", "dress", "jeans", "jacket", "shoes", "socks"}},
	{"Home & Kitchen", []string{"soap", "shampoo", "toothpaste", "detergent", "plate", "cup", "bowl"}},
	{"Books", []string{"book", "notebook", "pen", "paper"}},
}

func productCategoryFor(name string) string {
	lower := strings.ToLower(name)
	for _, cat := range productCategories {
		for _, keyword := range cat.keywords {
			if strings.Contains(lower, keyword) {
				return cat.name
			}
		}
	}

	return "General"
}

func newFallbackProduct(name, unit string, price float64, quantity int) profile.Product {
	title := titleCaser.String(name)

	return profile.Product{
		Name:        title,
		Price:       price,
		Category:    productCategoryFor(name),
		Description: "Fresh " + title,
		Unit:        unit,
		Quantity:    quantity,
	}
}

// productsFallback extracts products from a transcript with regex patterns
// and keyword matching. Results are deduplicated by name and capped.
func productsFallback(transcript string) []profile.Product {
	lower := strings.ToLower(transcript)
	products := []profile.Product{}
	seen := map[string]bool{}

	add := func(p profile.Product) {
		key := strings.ToLower(p.Name)
		if len(key) <= 2 || seen[key] {
			return
		}
		seen[key] = true
		products = append(products, p)
	}

	for _, m := range productPatterns[0].FindAllStringSubmatch(lower, -1) {
		quantity, _ := strconv.Atoi(m[1])
		price, _ := strconv.ParseFloat(m[4], 64)
		add(newFallbackProduct(m[3], m[2], price, quantity))
	}
	for _, m := range productPatterns[1].FindAllStringSubmatch(lower, -1) {
		price, _ := strconv.ParseFloat(m[2], 64)
		add(newFallbackProduct(m[1], m[3], price, 1))
	}
	for _, m := range productPatterns[2].FindAllStringSubmatch(lower, -1) {
		quantity, _ := strconv.Atoi(m[1])
		add(newFallbackProduct(m[3], m[2], 0, quantity))
	}
	for _, m := range productPatterns[3].FindAllStringSubmatch(lower, -1) {
		price, _ := strconv.ParseFloat(m[2], 64)
		add(newFallbackProduct(m[1], "pcs", price, 1))
	}

	for _, keyword := range productKeywords {
		if strings.Contains(lower, keyword) {
			add(newFallbackProduct(keyword, "pcs", 0, 1))
		}
	}

	if len(products) > maxFallbackProducts {
		products = products[:maxFallbackProducts]
	}

	return products
}
