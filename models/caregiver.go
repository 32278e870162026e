package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// CaregiverView is the single shape callers see for an assigned caregiver.
type CaregiverView struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// NormalizeCaregiver maps the legacy request shapes onto CaregiverView.
// Precedence: "caregiver", "nanny", "nanny_details", then flattened
// "nanny_id"/"nanny_name"/"nanny_phone". Returns nil when none is present.
func NormalizeCaregiver(doc bson.M) *CaregiverView {
	for _, key := range []string{"caregiver", "nanny", "nanny_details"} {
		if sub, ok := asMap(doc[key]); ok {
			v := &CaregiverView{
				ID:    firstString(sub, "id", "_id", "user_id"),
				Name:  firstString(sub, "name", "full_name", "first_name"),
				Phone: firstString(sub, "phone", "phone_number"),
			}
			if v.ID != "" || v.Name != "" {
				return v
			}
		}
	}

	v := &CaregiverView{
		ID:    firstString(doc, "nanny_id", "caregiver_id"),
		Name:  firstString(doc, "nanny_name", "caregiver_name"),
		Phone: firstString(doc, "nanny_phone"),
	}
	if v.ID == "" && v.Name == "" {
		return nil
	}
	return v
}

func asMap(v interface{}) (bson.M, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]interface{}:
		return bson.M(m), true
	case bson.D:
		return m.Map(), true
	}
	return nil, false
}

func firstString(m bson.M, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
