package repository

import (
	"fmt"
	"strings"

	"github.com/DeepakTayde/rentpe-v1-sub002/internal/model"
)

const (
	// StatusVerified is the only listing status visible to search
	StatusVerified = "verified"

	// DefaultResultLimit is used when no positive limit is given
	DefaultResultLimit = 10
)

const propertyColumns = `id, title, locality, address, rent, deposit, bedrooms, bathrooms,
			area_sqft, furnishing, property_type, images, amenities, is_verified,
			city_id, created_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PropertyQuery is a parameterised listing query built from extracted filters
type PropertyQuery struct {
	Conditions []string
	Args       []interface{}
	Limit      int
}

// BuildPropertyQuery translates filters into a verified-only, newest-first query.
// Unset filters add no predicate. City and amenities never narrow the result.
func BuildPropertyQuery(filters model.Filters, limit int) PropertyQuery {
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	f := filters.Normalize()
	q := PropertyQuery{Limit: limit}

	// Only verified listings are ever visible
	q.where("status = $%d", StatusVerified)
	q.where("is_verified = $%d", true)

	if f.PropertyType != nil {
		q.where("property_type = $%d", string(*f.PropertyType))
	}
	if f.MinBudget != nil {
		q.where("rent >= $%d", *f.MinBudget)
	}
	if f.MaxBudget != nil {
		q.where("rent <= $%d", *f.MaxBudget)
	}
	if f.Furnishing != nil {
		q.where("furnishing = $%d", string(*f.Furnishing))
	}
	if f.Bedrooms != nil {
		q.where("bedrooms = $%d", *f.Bedrooms)
	}
	if f.Locality != nil {
		q.where("locality ILIKE '%%' || $%d || '%%'", likeEscaper.Replace(*f.Locality))
	}

	return q
}

func (q *PropertyQuery) where(format string, arg interface{}) {
	q.Args = append(q.Args, arg)
	q.Conditions = append(q.Conditions, fmt.Sprintf(format, len(q.Args)))
}

// SQL renders the statement; the limit is bound as the last placeholder
func (q PropertyQuery) SQL() string {
	return fmt.Sprintf(`
		SELECT
			%s
		FROM properties
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d
	`, propertyColumns, strings.Join(q.Conditions, " AND "), len(q.Args)+1)
}

// QueryArgs returns the bind arguments for SQL, limit included
func (q PropertyQuery) QueryArgs() []interface{} {
	args := make([]interface{}, 0, len(q.Args)+1)
	args = append(args, q.Args...)
	return append(args, q.Limit)
}
