package services

import (
	"encoding/binary"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"

	"destinex/models"
)

// Price range symbols, cheapest to most expensive.
const (
	PriceBudget   = "₹"
	PriceModerate = "₹₹"
	PriceLuxury   = "₹₹₹"
)

// Rating thresholds for the price fallback. Kept separate from the insight
// suffix thresholds even though the values coincide.
const (
	priceLuxuryRating   = 4.5
	priceModerateRating = 4.0
)

// Rating thresholds for the insight suffix.
const (
	highlyRatedMin = 4.5
	wellLovedMin   = 4.0
)

var luxuryKeywords = []string{
	"luxury", "premium", "5-star", "five star", "resort", "palace",
	"heritage", "boutique", "fine dining", "rooftop", "spa", "golf",
	"marriott", "taj", "hyatt", "hilton", "oberoi", "itc", "leela",
	"expensive", "high-end", "exclusive", "private", "suite",
}

var budgetKeywords = []string{
	"budget", "cheap", "economy", "hostel", "backpacker", "dhaba",
	"street food", "cafe", "inexpensive", "affordable", "low-cost",
	"zostel", "free", "complimentary", "no charge",
}

var moderateKeywords = []string{
	"mid-range", "moderate", "3-star", "three star", "comfortable",
	"decent", "reasonable", "standard", "regular", "casual",
}

// categoryRule maps a label to the keywords that select it. Rules are
// evaluated in order; the first rule with any matching keyword wins.
type categoryRule struct {
	label    string
	keywords []string
}

var attractionRules = []categoryRule{
	{"historic", []string{"historic", "cultural", "architecture", "monument", "museum", "fort", "palace"}},
	{"nature", []string{"natural", "park", "garden", "beach", "mountain", "lake", "nature"}},
	{"religious", []string{"religion", "temple", "church", "mosque", "gurdwara", "shrine", "spiritual"}},
	{"entertainment", []string{"amusement", "entertainment", "zoo", "aquarium", "theater", "cinema"}},
}

var hotelRules = []categoryRule{
	{"luxury", []string{"luxury", "premium", "5-star", "resort", "palace", "spa"}},
	{"boutique", []string{"boutique", "heritage", "charming", "unique"}},
	{"budget", []string{"hostel", "budget", "economy", "cheap"}},
}

var restaurantRules = []categoryRule{
	{"fine_dining", []string{"fine dining", "gourmet", "luxury", "premium", "5-star"}},
	{"street_food", []string{"street food", "fast food", "food court", "stall"}},
	{"casual", []string{"cafe", "casual", "bistro", "diner"}},
}

var attractionInsights = map[string][]string{
	"historic": {
		"Rich in history and culture. Best visited with a guide to fully appreciate the stories.",
		"A testament to the region's glorious past. Don't miss the architectural details.",
		"Step back in time and experience the heritage of this magnificent site.",
	},
	"nature": {
		"Perfect escape from city life. Visit early morning for the best experience.",
		"Breathtaking natural beauty. Ideal for photography enthusiasts.",
		"A peaceful retreat surrounded by nature's finest offerings.",
	},
	"religious": {
		"Spiritual ambiance that brings peace and tranquility. Dress modestly.",
		"Important pilgrimage site with deep cultural significance.",
		"Experience the divine atmosphere and architectural grandeur.",
	},
	"entertainment": {
		"Great place for fun and entertainment with family and friends.",
		"Vibrant atmosphere with plenty of activities for all ages.",
		"Perfect spot to unwind and enjoy leisure time.",
	},
	"default": {
		"Popular destination loved by locals and tourists alike.",
		"Worth a visit when exploring the city. Check reviews for best times.",
		"A must-see attraction that captures the essence of the city.",
	},
}

var hotelInsights = map[string][]string{
	"luxury": {
		"World-class amenities and impeccable service for a memorable stay.",
		"Indulge in luxury with stunning views and premium facilities.",
		"Perfect blend of comfort and elegance for discerning travelers.",
	},
	"boutique": {
		"Charming property with unique character and personalized service.",
		"Intimate setting with attention to every detail.",
		"Experience local hospitality in a cozy, well-appointed space.",
	},
	"budget": {
		"Great value for money with all essential amenities.",
		"Clean and comfortable accommodation without breaking the bank.",
		"Perfect for budget travelers and backpackers.",
	},
	"default": {
		"Convenient location with good amenities for a comfortable stay.",
		"Well-rated property offering reliable hospitality.",
		"Good choice for both business and leisure travelers.",
	},
}

var restaurantInsights = map[string][]string{
	"fine_dining": {
		"Exquisite culinary experience with impeccable presentation and service.",
		"Perfect for special occasions with an elegant ambiance.",
		"Mouthwatering dishes crafted by skilled chefs using premium ingredients.",
	},
	"casual": {
		"Relaxed atmosphere with delicious food at reasonable prices.",
		"Great spot for a casual meal with friends and family.",
		"Consistently good food with friendly service.",
	},
	"street_food": {
		"Authentic local flavors that shouldn't be missed.",
		"Popular among locals - a true taste of the city's culinary culture.",
		"Delicious and affordable - perfect for food adventurers.",
	},
	"default": {
		"Well-loved eatery serving tasty dishes in a welcoming setting.",
		"Good food, good vibes - a reliable choice for any meal.",
		"Recommended by locals for its quality and consistency.",
	},
}

const genericInsight = "A great place to visit and explore."

// EnrichService derives ratings, price ranges and insight text for raw
// places using rule-based logic. All methods are pure; the same inputs
// always produce the same outputs across runs and hosts.
type EnrichService struct{}

func NewEnrichService() *EnrichService {
	log.Info().Msg("Enrich service initialized (rule-based)")
	return &EnrichService{}
}

// Classify maps a place to a semantic category label for the given kind
// ("attractions", "hotels" or "restaurants"). Attractions are classified
// on their category tags alone; hotels and restaurants also inspect the
// name. Unknown kinds and unmatched text return "default".
func (s *EnrichService) Classify(kind, name, kinds string) string {
	var text string
	var rules []categoryRule

	switch kind {
	case "attractions":
		text = strings.ToLower(kinds)
		rules = attractionRules
	case "hotels":
		text = strings.ToLower(name + " " + kinds)
		rules = hotelRules
	case "restaurants":
		text = strings.ToLower(name + " " + kinds)
		rules = restaurantRules
	default:
		return "default"
	}

	for _, rule := range rules {
		if containsAny(text, rule.keywords) {
			return rule.label
		}
	}
	return "default"
}

// EstimatePriceRange estimates a price range symbol from keywords in the
// name and category tags, falling back to rating thresholds. Luxury
// keywords take precedence over budget, budget over moderate.
func (s *EnrichService) EstimatePriceRange(name, kinds string, rating float64) string {
	text := strings.ToLower(name + " " + kinds)

	switch {
	case containsAny(text, luxuryKeywords):
		return PriceLuxury
	case containsAny(text, budgetKeywords):
		return PriceBudget
	case containsAny(text, moderateKeywords):
		return PriceModerate
	case rating >= priceLuxuryRating:
		return PriceLuxury
	case rating >= priceModerateRating:
		return PriceModerate
	default:
		return PriceBudget
	}
}

// GenerateRating derives a stable pseudo-rating in [3.5, 5.0] from the
// place name. The hash is fixed by contract: BLAKE2b-256 of the name's
// UTF-8 bytes, with the last digest byte mod 16 picking one of sixteen
// 0.1 steps above 3.5. Same name, same rating, on every run.
func (s *EnrichService) GenerateRating(name string) float64 {
	digest := blake2b.Sum256([]byte(name))
	variance := float64(digest[31]%16) / 10.0
	return math.Round((3.5+variance)*10) / 10
}

// GenerateInsight selects a templated sentence for the place's category
// and appends a suffix for highly rated places. The template index is
// the first eight digest bytes (big-endian) mod the pool size, so the
// base sentence is deterministic per name. Unknown kinds get a fixed
// generic sentence.
func (s *EnrichService) GenerateInsight(name, kind, kinds string, rating float64) string {
	var pools map[string][]string

	switch kind {
	case "attractions":
		pools = attractionInsights
	case "hotels":
		pools = hotelInsights
	case "restaurants":
		pools = restaurantInsights
	default:
		return genericInsight
	}

	pool, ok := pools[s.Classify(kind, name, kinds)]
	if !ok {
		pool = pools["default"]
	}

	digest := blake2b.Sum256([]byte(name))
	insight := pool[binary.BigEndian.Uint64(digest[:8])%uint64(len(pool))]

	if rating >= highlyRatedMin {
		insight += " Highly rated by visitors!"
	} else if rating >= wellLovedMin {
		insight += " Well-loved by travelers."
	}
	return insight
}

// RankPlaces returns the places sorted by rating, then review count,
// descending. The sort is stable, so equal places keep their raw fetch
// order. The input slice is not modified.
func (s *EnrichService) RankPlaces(places []models.EnrichedPlace) []models.EnrichedPlace {
	ranked := make([]models.EnrichedPlace, len(places))
	copy(ranked, places)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		return ranked[i].ReviewCount > ranked[j].ReviewCount
	})
	return ranked
}

// EnrichPlaces runs the full pipeline for one bucket: drop nameless
// records, derive rating, price range and insight per place, then rank.
// kind is the plural bucket name; the stored category is its singular.
func (s *EnrichService) EnrichPlaces(raw []models.RawPlace, kind string) []models.EnrichedPlace {
	enriched := make([]models.EnrichedPlace, 0, len(raw))

	for _, place := range raw {
		if place.Name == "" {
			continue
		}
		kinds := place.Kinds()
		rating := s.GenerateRating(place.Name)

		enriched = append(enriched, models.EnrichedPlace{
			Name:       place.Name,
			Category:   strings.TrimSuffix(kind, "s"),
			Rating:     rating,
			PriceRange: s.EstimatePriceRange(place.Name, kinds, rating),
			Insight:    s.GenerateInsight(place.Name, kind, kinds, rating),
			DistanceKm: place.DistanceKm,
			Lat:        place.Lat,
			Lon:        place.Lon,
		})
	}
	return s.RankPlaces(enriched)
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
