package supplier

import (
	"bytes"
	"encoding/json"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/noah-isme/backend-procure/internal/common"
)

// Sort keys accepted by Search.
const (
	SortRelevance   = "relevance"
	SortRating      = "rating"
	SortReliability = "reliability"
	SortName        = "name"
)

// MinQueryLength is the shortest free-text query the HTTP layer forwards to Search.
const MinQueryLength = 2

// Criteria narrows and orders a supplier list. Every field is optional.
type Criteria struct {
	Query            string   `json:"query,omitempty"`
	Categories       []string `json:"categories,omitempty"`
	Regions          []string `json:"regions,omitempty"`
	MinRating        *float64 `json:"minRating,omitempty"`
	MinReliability   *int     `json:"minReliability,omitempty"`
	ComplianceStatus string   `json:"complianceStatus,omitempty"`
	Certifications   []string `json:"certifications,omitempty"`
	SortBy           string   `json:"sortBy,omitempty"`
}

// IsZero reports whether no filter or ordering is requested.
func (c Criteria) IsZero() bool {
	return c.Query == "" && len(c.Categories) == 0 && len(c.Regions) == 0 &&
		c.MinRating == nil && c.MinReliability == nil && c.ComplianceStatus == "" &&
		len(c.Certifications) == 0 && (c.SortBy == "" || c.SortBy == SortRelevance)
}

// Search applies every present filter as a logical AND and orders the result.
// The returned slice never aliases the input.
func Search(suppliers []Supplier, c Criteria) []Supplier {
	out := make([]Supplier, 0, len(suppliers))
	query := strings.ToLower(c.Query)
	for _, s := range suppliers {
		if c.matches(s, query) {
			out = append(out, s.clone())
		}
	}
	sortSuppliers(out, c.SortBy)
	return out
}

func (c Criteria) matches(s Supplier, query string) bool {
	if query != "" && !matchesQuery(s, query) {
		return false
	}
	if len(c.Categories) > 0 && !containsFold(c.Categories, s.Category) {
		return false
	}
	if len(c.Regions) > 0 && !matchesRegion(s, c.Regions) {
		return false
	}
	if c.MinRating != nil && s.Rating < *c.MinRating {
		return false
	}
	if c.MinReliability != nil && s.ReliabilityScore < *c.MinReliability {
		return false
	}
	if c.ComplianceStatus != "" && s.ComplianceStatus != c.ComplianceStatus {
		return false
	}
	if len(c.Certifications) > 0 && !hasAnyCertification(s, c.Certifications) {
		return false
	}
	return true
}

func matchesQuery(s Supplier, query string) bool {
	fields := []string{s.Name, s.Description, s.Category, s.Subcategory}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	for _, p := range s.Products {
		if strings.Contains(strings.ToLower(p.Name), query) {
			return true
		}
	}
	return false
}

// A region matches the supplier's region exactly or appears within its location.
func matchesRegion(s Supplier, regions []string) bool {
	location := strings.ToLower(s.Location)
	for _, r := range regions {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if r == strings.ToLower(s.Region) || strings.Contains(location, r) {
			return true
		}
	}
	return false
}

func hasAnyCertification(s Supplier, wanted []string) bool {
	for _, w := range wanted {
		w = strings.ToLower(w)
		for _, cert := range s.Certifications {
			if strings.Contains(strings.ToLower(cert.Name), w) {
				return true
			}
		}
	}
	return false
}

func sortSuppliers(list []Supplier, key string) {
	switch key {
	case SortRating:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Rating > list[j].Rating })
	case SortReliability:
		sort.SliceStable(list, func(i, j int) bool { return list[i].ReliabilityScore > list[j].ReliabilityScore })
	case SortName:
		sort.SliceStable(list, func(i, j int) bool { return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name) })
	}
}

// ApplyQueryPolicy drops free-text queries shorter than MinQueryLength and
// normalises the remaining fields.
func ApplyQueryPolicy(c Criteria) Criteria {
	c.Query = strings.TrimSpace(c.Query)
	if utf8.RuneCountInString(c.Query) < MinQueryLength {
		c.Query = ""
	}
	c.ComplianceStatus = strings.ToLower(strings.TrimSpace(c.ComplianceStatus))
	c.SortBy = normalizeSort(c.SortBy)
	c.Categories = trimAll(c.Categories)
	c.Regions = trimAll(c.Regions)
	c.Certifications = trimAll(c.Certifications)
	return c
}

// ParseCriteria reads criteria from query parameters. Malformed numbers are
// treated as absent filters rather than errors.
func ParseCriteria(values url.Values) Criteria {
	c := Criteria{
		Query:            values.Get("q"),
		Categories:       multi(values, "category"),
		Regions:          multi(values, "region"),
		MinRating:        common.OptionalFloat(values.Get("minRating")),
		MinReliability:   common.OptionalInt(values.Get("minReliability")),
		ComplianceStatus: values.Get("complianceStatus"),
		Certifications:   multi(values, "certification"),
		SortBy:           values.Get("sortBy"),
	}
	if c.Query == "" {
		c.Query = values.Get("query")
	}
	return ApplyQueryPolicy(c)
}

func multi(values url.Values, key string) []string {
	var out []string
	for _, v := range values[key] {
		out = append(out, common.SplitCSV(v)...)
	}
	return out
}

func normalizeSort(key string) string {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case SortRating:
		return SortRating
	case SortReliability:
		return SortReliability
	case SortName:
		return SortName
	default:
		return SortRelevance
	}
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if equalFold(s, v) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// UnmarshalJSON accepts numbers encoded as strings and list fields given as a
// single comma separated string. Unusable numeric values leave the filter unset.
func (c *Criteria) UnmarshalJSON(data []byte) error {
	var raw struct {
		Query            string          `json:"query"`
		Q                string          `json:"q"`
		Categories       json.RawMessage `json:"categories"`
		Category         json.RawMessage `json:"category"`
		Regions          json.RawMessage `json:"regions"`
		Region           json.RawMessage `json:"region"`
		MinRating        json.RawMessage `json:"minRating"`
		MinReliability   json.RawMessage `json:"minReliability"`
		ComplianceStatus string          `json:"complianceStatus"`
		Certifications   json.RawMessage `json:"certifications"`
		SortBy           string          `json:"sortBy"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Criteria{
		Query:            raw.Query,
		Categories:       append(looseStrings(raw.Categories), looseStrings(raw.Category)...),
		Regions:          append(looseStrings(raw.Regions), looseStrings(raw.Region)...),
		MinRating:        looseFloat(raw.MinRating),
		ComplianceStatus: raw.ComplianceStatus,
		Certifications:   looseStrings(raw.Certifications),
		SortBy:           raw.SortBy,
	}
	if c.Query == "" {
		c.Query = raw.Q
	}
	if f := looseFloat(raw.MinReliability); f != nil {
		n := int(*f)
		c.MinReliability = &n
	}
	return nil
}

func looseFloat(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return common.OptionalFloat(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func looseStrings(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, v := range list {
			switch t := v.(type) {
			case string:
				out = append(out, t)
			case float64:
				out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
			}
		}
		return out
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return common.SplitCSV(s)
	}
	return nil
}
