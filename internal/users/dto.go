package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/smartcart/smartcart-backend/pkg/db/models"
	"github.com/smartcart/smartcart-backend/pkg/enums"
)

// ShopperDTO is the dashboard's view of a shopper row.
type ShopperDTO struct {
	ID                 uuid.UUID          `json:"id"`
	Email              string             `json:"email"`
	Username           string             `json:"username"`
	RFIDTag            string             `json:"rfid_tag,omitempty"`
	DietaryPreferences []enums.DietaryTag `json:"dietary_preferences"`
	Timestamp          time.Time          `json:"timestamp"`
}

// PreferencesRequest replaces a shopper's dietary preferences.
type PreferencesRequest struct {
	Preferences []string `json:"preferences" validate:"dive,required"`
}

// FromModel maps a shopper row; tags the storefront no longer knows are dropped.
func FromModel(m *models.Shopper) *ShopperDTO {
	if m == nil {
		return nil
	}
	return &ShopperDTO{
		ID:                 m.ID,
		Email:              m.Email,
		Username:           m.Username,
		RFIDTag:            m.RFIDTag,
		DietaryPreferences: knownTags(m.DietaryPreferences),
		Timestamp:          m.Timestamp,
	}
}

func knownTags(values []string) []enums.DietaryTag {
	out := make([]enums.DietaryTag, 0, len(values))
	for _, v := range values {
		if tag, err := enums.ParseDietaryTag(v); err == nil {
			out = append(out, tag)
		}
	}
	return out
}
