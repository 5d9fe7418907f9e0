package orders

import (
	"fmt"

	"github.com/matthieukhl/commercial-manager/internal/models"
	"github.com/matthieukhl/commercial-manager/internal/validate"
)

// Field limits shared with the schema.
const (
	MaxTrackNumberLen = 100
	MaxStatusLen      = 50
)

// Input is an order header plus details, every field as typed by the user.
type Input struct {
	Date            string        `json:"date" binding:"required"`
	DeliveryAddress string        `json:"delivery_address" binding:"required"`
	TrackNumber     string        `json:"track_number" binding:"required"`
	Status          string        `json:"status" binding:"required"`
	CustomerID      string        `json:"customer_id" binding:"required"`
	Details         []DetailInput `json:"details"`
}

// DetailInput is one line item as typed by the user.
type DetailInput struct {
	ProductID string `json:"product_id"`
	Quantity  string `json:"quantity"`
	Price     string `json:"price"`
}

// header is the validated, typed form of Input's header fields.
type header struct {
	date            string
	deliveryAddress string
	trackNumber     string
	status          string
	customerID      int64
}

func parseHeader(in Input) (header, error) {
	if err := validate.CalendarDate("date", in.Date); err != nil {
		return header{}, err
	}
	if err := validate.Text("delivery address", in.DeliveryAddress); err != nil {
		return header{}, err
	}
	if err := validate.BoundedText("track number", in.TrackNumber, MaxTrackNumberLen); err != nil {
		return header{}, err
	}
	if err := validate.BoundedText("status", in.Status, MaxStatusLen); err != nil {
		return header{}, err
	}
	customerID, err := validate.ParseID("customer id", in.CustomerID)
	if err != nil {
		return header{}, err
	}
	return header{
		date:            in.Date,
		deliveryAddress: in.DeliveryAddress,
		trackNumber:     in.TrackNumber,
		status:          in.Status,
		customerID:      customerID,
	}, nil
}

// parseDetails validates every line. Field names carry the 1-based line
// number so the caller can point at the bad one.
func parseDetails(in []DetailInput) ([]models.OrderDetail, error) {
	details := make([]models.OrderDetail, 0, len(in))
	for i, d := range in {
		line := i + 1
		productID, err := validate.ParseID(fmt.Sprintf("detail %d product id", line), d.ProductID)
		if err != nil {
			return nil, err
		}
		quantity, err := validate.ParsePositiveInt(fmt.Sprintf("detail %d quantity", line), d.Quantity)
		if err != nil {
			return nil, err
		}
		price, err := validate.ParseMoney(fmt.Sprintf("detail %d price", line), d.Price)
		if err != nil {
			return nil, err
		}
		details = append(details, models.OrderDetail{ProductID: productID, Quantity: quantity, Price: price})
	}
	return details, nil
}

// InputFrom turns a stored order back into an Input, e.g. to overlay a
// few changed fields before calling Update.
func InputFrom(o *models.PurchaseOrder) Input {
	return Input{
		Date:            o.Date,
		DeliveryAddress: o.DeliveryAddress,
		TrackNumber:     o.TrackNumber,
		Status:          o.Status,
		CustomerID:      fmt.Sprint(o.CustomerID),
	}
}
