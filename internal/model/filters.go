package model

import (
	"strings"
)

// PropertyType is the kind of rental unit a user is looking for
type PropertyType string

const (
	PropertyType1RK   PropertyType = "1rk"
	PropertyType1BHK  PropertyType = "1bhk"
	PropertyType2BHK  PropertyType = "2bhk"
	PropertyType3BHK  PropertyType = "3bhk"
	PropertyType4BHK  PropertyType = "4bhk"
	PropertyTypeVilla PropertyType = "villa"
	PropertyTypePG    PropertyType = "pg"
)

// PropertyTypes lists every valid property type in schema order
var PropertyTypes = []PropertyType{
	PropertyType1RK,
	PropertyType1BHK,
	PropertyType2BHK,
	PropertyType3BHK,
	PropertyType4BHK,
	PropertyTypeVilla,
	PropertyTypePG,
}

// Furnishing is the furnishing level of a property
type Furnishing string

const (
	FurnishingFully       Furnishing = "fully"
	FurnishingSemi        Furnishing = "semi"
	FurnishingUnfurnished Furnishing = "unfurnished"
)

// Furnishings lists every valid furnishing level in schema order
var Furnishings = []Furnishing{
	FurnishingFully,
	FurnishingSemi,
	FurnishingUnfurnished,
}

// MaxSuggestions caps the refinement prompts returned per turn
const MaxSuggestions = 3

// Filters is the structured search intent extracted from a conversation.
// Every field is optional: a nil pointer or nil slice means "don't filter on this".
type Filters struct {
	PropertyType    *PropertyType `json:"propertyType,omitempty"`
	MinBudget       *int64        `json:"minBudget,omitempty"`
	MaxBudget       *int64        `json:"maxBudget,omitempty"`
	City            *string       `json:"city,omitempty"`
	Locality        *string       `json:"locality,omitempty"`
	Furnishing      *Furnishing   `json:"furnishing,omitempty"`
	Bedrooms        *int          `json:"bedrooms,omitempty"`
	Amenities       []string      `json:"amenities,omitempty"`
	ResponseMessage string        `json:"responseMessage,omitempty"`
	Suggestions     []string      `json:"suggestions,omitempty"`
}

// IsEmpty reports whether no structured search field is set
func (f Filters) IsEmpty() bool {
	return f.PropertyType == nil &&
		f.MinBudget == nil &&
		f.MaxBudget == nil &&
		f.City == nil &&
		f.Locality == nil &&
		f.Furnishing == nil &&
		f.Bedrooms == nil &&
		len(f.Amenities) == 0
}

// Normalize returns a copy with the budget range ordered, negative numbers and blank
// strings dropped, amenities de-duplicated and suggestions capped.
func (f Filters) Normalize() Filters {
	out := f

	if out.MinBudget != nil && *out.MinBudget < 0 {
		out.MinBudget = nil
	}
	if out.MaxBudget != nil && *out.MaxBudget < 0 {
		out.MaxBudget = nil
	}
	if out.MinBudget != nil && out.MaxBudget != nil && *out.MinBudget > *out.MaxBudget {
		min, max := *out.MaxBudget, *out.MinBudget
		out.MinBudget = &min
		out.MaxBudget = &max
	}
	if out.Bedrooms != nil && *out.Bedrooms < 0 {
		out.Bedrooms = nil
	}

	out.City = trimmedOrNil(out.City)
	out.Locality = trimmedOrNil(out.Locality)
	out.Amenities = uniqueStrings(out.Amenities)
	out.ResponseMessage = strings.TrimSpace(out.ResponseMessage)

	suggestions := uniqueStrings(out.Suggestions)
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	out.Suggestions = suggestions

	return out
}

// ParsePropertyType maps free-form spellings such as "2 BHK" or "Villa" to a PropertyType
func ParsePropertyType(s string) (PropertyType, bool) {
	key := enumKey(s)
	for _, t := range PropertyTypes {
		if key == string(t) {
			return t, true
		}
	}
	return "", false
}

// ParseFurnishing maps spellings such as "Semi-Furnished" or "fully furnished" to a Furnishing
func ParseFurnishing(s string) (Furnishing, bool) {
	switch enumKey(s) {
	case "fully", "full", "furnished", "fullyfurnished", "fullfurnished":
		return FurnishingFully, true
	case "semi", "semifurnished", "partlyfurnished":
		return FurnishingSemi, true
	case "unfurnished", "un", "notfurnished", "none", "bare":
		return FurnishingUnfurnished, true
	}
	return "", false
}

// enumKey lower-cases and strips separators so spelling variants compare equal
func enumKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// uniqueStrings trims entries and removes blanks and case-insensitive duplicates,
// keeping the first spelling and the original order.
func uniqueStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
