package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPurchaseOrderTotal(t *testing.T) {
	o := PurchaseOrder{Details: []OrderDetail{
		{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("19.99")},
		{ProductID: 2, Quantity: 3, Price: decimal.RequireFromString("0.10")},
	}}
	assert.Equal(t, "40.28", o.Total().StringFixed(2))

	assert.True(t, (&PurchaseOrder{}).Total().IsZero())
}
