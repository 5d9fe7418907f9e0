package orders

// Builder accumulates the details of one order before it is submitted.
// It belongs to the caller; nothing about a pending order is kept in
// package state.
type Builder struct {
	in Input
}

// NewBuilder starts an order with the given header and no details.
func NewBuilder(date, deliveryAddress, trackNumber, status, customerID string) *Builder {
	return &Builder{in: Input{
		Date:            date,
		DeliveryAddress: deliveryAddress,
		TrackNumber:     trackNumber,
		Status:          status,
		CustomerID:      customerID,
	}}
}

// AddDetail appends a line. Validation happens when the order is written.
func (b *Builder) AddDetail(productID, quantity, price string) *Builder {
	b.in.Details = append(b.in.Details, DetailInput{ProductID: productID, Quantity: quantity, Price: price})
	return b
}

// Len returns the number of details added so far.
func (b *Builder) Len() int {
	return len(b.in.Details)
}

// Reset drops all lines but keeps the header.
func (b *Builder) Reset() {
	b.in.Details = nil
}

// Input returns a copy that later AddDetail calls do not affect.
func (b *Builder) Input() Input {
	in := b.in
	in.Details = append([]DetailInput(nil), b.in.Details...)
	return in
}
