package marketplace

// ShippingPattern is one of the three lead-time options offered to a
// monitored listing — its key is persisted on MonitoredItem and mapped
// back to lead_time_to_ship_max_days when the listing is patched.
type ShippingPattern struct {
	Key          string
	Label        string
	LeadTimeDays int
	TemplateName string
}

// ShippingPatternKeys are the only valid values for MonitoredItem's
// shipping pattern column.
var ShippingPatternKeys = []string{"1_2_days", "2_3_days", "3_7_days"}

// ShippingPatterns returns the three configured shipping patterns,
// templated against the account's shipping template id.
func ShippingPatterns(templateID string) []ShippingPattern {
	return []ShippingPattern{
		{Key: "1_2_days", Label: "1〜2日で発送", LeadTimeDays: 4, TemplateName: templateID},
		{Key: "2_3_days", Label: "2〜3日で発送", LeadTimeDays: 6, TemplateName: templateID},
		{Key: "3_7_days", Label: "3〜7日で発送", LeadTimeDays: 9, TemplateName: templateID},
	}
}

// ShippingPatternByKey looks up one pattern by its key, nil if unknown.
func ShippingPatternByKey(templateID, key string) *ShippingPattern {
	for _, p := range ShippingPatterns(templateID) {
		if p.Key == key {
			return &p
		}
	}
	return nil
}

// IsValidShippingPatternKey reports whether key is one of the three
// accepted shipping pattern identifiers.
func IsValidShippingPatternKey(key string) bool {
	for _, k := range ShippingPatternKeys {
		if k == key {
			return true
		}
	}
	return false
}
