package domain

import (
	"strconv"
	"strings"
	"time"
)

// Payload rows arrive with backend-native snake_case keys, but sheet imports
// and older clients still send camelCase, and numeric columns show up as
// formatted strings ("12,345", "4.5%"). Every ingestion path (realtime
// events, sheet rows) must pass through MapCreator/MapCampaign so that the
// scoring and query layers only ever see clean typed values.

func MapCreator(row map[string]any) Creator {
	return Creator{
		ID:                     asString(pick(row, "id")),
		Name:                   asString(pick(row, "name")),
		Username:               asString(pick(row, "username", "handle")),
		Email:                  asString(pick(row, "email")),
		City:                   asString(pick(row, "city")),
		State:                  asString(pick(row, "state")),
		FollowersTier:          asString(pick(row, "followers_tier", "followersTier")),
		SheetSource:            asString(pick(row, "sheet_source", "sheetSource")),
		EngagementRate:         asFloatPtr(pick(row, "engagement_rate", "engagementRate")),
		AvgLikes:               asFloatPtr(pick(row, "avg_likes", "avgLikes")),
		AvgComments:            asFloatPtr(pick(row, "avg_comments", "avgComments")),
		ManualPerformanceScore: asFloatPtr(pick(row, "manual_performance_score", "manualPerformanceScore")),
		CreatedAt:              asTime(pick(row, "created_at", "createdAt")),
		UpdatedAt:              asTime(pick(row, "updated_at", "updatedAt")),
	}
}

func MapCampaign(row map[string]any) Campaign {
	return Campaign{
		ID:            asString(pick(row, "id")),
		CreatorID:     campaignCreatorID(row),
		Status:        asString(pick(row, "status")),
		PaymentStatus: asString(pick(row, "payment_status", "paymentStatus")),
		Amount:        asFloatPtr(pick(row, "amount")),
		AgreedAmount:  asFloatPtr(pick(row, "agreed_amount", "agreedAmount")),
		EndDate:       asTimePtr(pick(row, "end_date", "endDate")),
		CreatedAt:     asTime(pick(row, "created_at", "createdAt")),
	}
}

// campaignCreatorID resolves the creator foreign key, which may arrive as a
// plain id column or as a nested creator object from a joined select.
func campaignCreatorID(row map[string]any) string {
	if id := asString(pick(row, "creator_id", "creatorId")); id != "" {
		return id
	}
	for _, key := range []string{"creators", "creator"} {
		if nested, ok := pick(row, key).(map[string]any); ok {
			if id := asString(pick(nested, "id")); id != "" {
				return id
			}
		}
	}
	return ""
}

func pick(row map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}

// ParseNumeric coerces a loosely typed numeric value to a float. Thousands
// separators and percent signs are stripped before parsing; anything that
// still fails to parse, along with NaN, reports ok=false.
func ParseNumeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if n != n { // NaN
			return 0, false
		}
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		cleaned := strings.TrimSpace(n)
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		cleaned = strings.TrimSuffix(cleaned, "%")
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func asFloatPtr(v any) *float64 {
	f, ok := ParseNumeric(v)
	if !ok {
		return nil
	}
	return &f
}

func asTime(v any) time.Time {
	t, _ := parseTime(v)
	return t
}

func asTimePtr(v any) *time.Time {
	t, ok := parseTime(v)
	if !ok {
		return nil
	}
	return &t
}

func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}
