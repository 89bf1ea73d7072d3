// Package pricing computes checkout totals. It is pure: no I/O, no clock, no
// randomness, so two calls over the same lines always agree.
package pricing

// Line is the slice of a cart line the calculator needs: the price the buyer
// pays per unit right now, and how many units.
type Line struct {
	FinalUnitPrice float64
	Quantity       int
}

// Quote is the priced cart. TotalAmount is always Subtotal + ShippingFee.
type Quote struct {
	Subtotal    float64
	ShippingFee float64
	TotalAmount float64
}

// Calculator holds the shipping policy: orders at or above FreeShippingThreshold
// ship free, everything below pays FlatShippingFee.
type Calculator struct {
	FreeShippingThreshold float64
	FlatShippingFee       float64
}

const (
	DefaultFreeShippingThreshold = 5000
	DefaultFlatShippingFee       = 200
)

func NewCalculator(freeShippingThreshold, flatShippingFee float64) *Calculator {
	return &Calculator{
		FreeShippingThreshold: freeShippingThreshold,
		FlatShippingFee:       flatShippingFee,
	}
}

// Compute prices the given lines. An empty input yields a zero subtotal and
// the flat fee; callers reject empty carts before ever asking for a quote.
func (c *Calculator) Compute(lines []Line) Quote {
	var subtotal float64

	for _, line := range lines {
		subtotal += line.FinalUnitPrice * float64(line.Quantity)
	}

	shipping := c.FlatShippingFee
	if subtotal >= c.FreeShippingThreshold {
		shipping = 0
	}

	return Quote{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		TotalAmount: subtotal + shipping,
	}
}
