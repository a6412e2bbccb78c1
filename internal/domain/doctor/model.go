package doctor

import (
	"github.com/primelabs/primelabs/internal/domain/commission"
	"github.com/primelabs/primelabs/internal/platform/docstore"
)

const Collection = "registered_doctors"

// Doctor is a registered referral partner.
type Doctor struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Location  string           `json:"location"`
	Phone     string           `json:"phone,omitempty"`
	Rates     commission.Rates `json:"commission_rates"`
	Active    bool             `json:"active"`
	CreatedBy string           `json:"created_by"`
	CreatedAt docstore.Time    `json:"created_at"`
	UpdatedBy string           `json:"updated_by,omitempty"`
	UpdatedAt docstore.Time    `json:"updated_at"`
}

// Ref is the identity copied onto referral info.
func (d *Doctor) Ref() commission.Doctor {
	return commission.Doctor{ID: d.ID, Name: d.Name, Location: d.Location}
}

// Update carries the editable fields; nil means unchanged.
type Update struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Phone    *string `json:"phone"`
	Active   *bool   `json:"active"`
}
