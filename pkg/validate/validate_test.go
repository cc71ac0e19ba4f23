package validate_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/validate"
)

type registerInput struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=8"`
	Role      string `json:"role"      validate:"nullable,in=USER|ADMIN"`
	Website   string `json:"website"   validate:"nullable,url"`
}

func TestValidInputHasNoErrors(t *testing.T) {
	errs := validate.Struct(registerInput{
		FirstName: "Ada",
		Email:     "ada@example.com",
		Password:  "longenough",
	})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestRulesReportFirstFailurePerField(t *testing.T) {
	errs := validate.Struct(&registerInput{
		Email:    "not-an-email",
		Password: "short",
		Role:     "ROOT",
		Website:  "ftp://example.com",
	})

	assert.Equal(t, "The firstName field is required.", errs["firstName"])
	assert.Equal(t, "The email must be a valid email address.", errs["email"])
	assert.Equal(t, "The password must be at least 8 characters.", errs["password"])
	assert.Equal(t, "The selected role is invalid.", errs["role"])
	assert.Equal(t, "The website must be a valid URL.", errs["website"])
}

type line struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity"  validate:"required,min=1"`
}

type cart struct {
	ShippingAddress string `json:"shippingAddress"`
	Items           []line `json:"items" validate:"required,min=1,dive"`
}

func TestDiveValidatesEachElement(t *testing.T) {
	errs := validate.Struct(cart{Items: []line{
		{ProductID: 1, Quantity: 2},
		{ProductID: 0, Quantity: 1},
		{ProductID: 3, Quantity: -4},
	}})

	assert.Len(t, errs, 2)
	assert.Contains(t, errs, "items[1].productId")
	assert.Equal(t, "The items[2].quantity must be at least 1.", errs["items[2].quantity"])
}

func TestEmptySliceFailsRequiredWithoutDiving(t *testing.T) {
	errs := validate.Struct(cart{Items: []line{}})
	assert.Equal(t, map[string]string{"items": "The items field is required."}, errs)
}

func TestDecimalFields(t *testing.T) {
	type productInput struct {
		Price decimal.Decimal `json:"price" validate:"required,gte=0"`
	}

	assert.Contains(t, validate.Struct(productInput{}), "price")
	assert.Contains(t, validate.Struct(productInput{Price: decimal.RequireFromString("-1.50")}), "price")
	assert.Empty(t, validate.Struct(productInput{Price: decimal.RequireFromString("19.99")}))
}
