package model

// FilterSchema is the JSON Schema an extraction payload must satisfy before it is decoded.
// Enum membership is checked after normalization, so only shapes are constrained here.
const FilterSchema = `{
  "type": "object",
  "properties": {
    "propertyType":    {"type": ["string", "null"]},
    "minBudget":       {"type": ["number", "null"], "minimum": 0},
    "maxBudget":       {"type": ["number", "null"], "minimum": 0},
    "city":            {"type": ["string", "null"]},
    "locality":        {"type": ["string", "null"]},
    "furnishing":      {"type": ["string", "null"]},
    "bedrooms":        {"type": ["number", "null"], "minimum": 0},
    "amenities":       {"type": ["array", "null"], "items": {"type": "string"}},
    "responseMessage": {"type": ["string", "null"]},
    "suggestions":     {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`
