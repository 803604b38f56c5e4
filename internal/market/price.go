package market

import (
	"math"
	"strconv"
)

// Price is an integer number of price ticks. All book and clearing
// arithmetic stays in integers; floats appear only transiently in uniform
// price interpolation before quantizing back.
type Price int64

// Quantize rounds p to the nearest multiple of tickSize.
func (p Price) Quantize(tickSize int) Price {
	if tickSize <= 1 {
		return p
	}
	return Price(math.Round(float64(p)/float64(tickSize))) * Price(tickSize)
}

func (p Price) String() string { return strconv.FormatInt(int64(p), 10) }
