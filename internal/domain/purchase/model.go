package purchase

import "github.com/lumenbill/lumenbill/internal/types"

// Purchase is the minimal purchase slice the checkout path reads: it links a
// checkout session back to an existing customer.
type Purchase struct {
	ID            string `json:"id" gorm:"column:id;primaryKey"`
	CustomerID    string `json:"customer_id" gorm:"column:customer_id;index"`
	ProductID     string `json:"product_id" gorm:"column:product_id"`
	EnvironmentID string `json:"environment_id" gorm:"column:environment_id;index"`
	types.BaseModel
}

func (Purchase) TableName() string {
	return "purchases"
}
