package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "lendly/internal/domain/booking"
	domaincatalog "lendly/internal/domain/catalog"
	domainrange "lendly/internal/domain/shared/daterange"
	"lendly/internal/domain/shared/money"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "renter_id", Value: 1}}})
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "owner_id", Value: 1}}})
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByRenter(ctx context.Context, renterID string) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"renter_id": renterID})
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domainbooking.Booking, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID})
}

func (r *BookingRepository) find(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	bookings := make([]*domainbooking.Booking, 0)
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		bookings = append(bookings, doc.toAggregate())
	}
	return bookings, cursor.Err()
}

type bookingDocument struct {
	ID               string        `bson:"_id"`
	ItemID           string        `bson:"item_id"`
	RenterID         string        `bson:"renter_id"`
	OwnerID          string        `bson:"owner_id"`
	Range            rangeDocument `bson:"range"`
	TotalDays        int           `bson:"total_days"`
	TotalPrice       money.Money   `bson:"total_price"`
	Deposit          money.Money   `bson:"deposit"`
	Status           string        `bson:"status"`
	PaymentStatus    string        `bson:"payment_status"`
	PaymentID        string        `bson:"payment_id"`
	Notes            string        `bson:"notes"`
	IssueReported    bool          `bson:"issue_reported"`
	IssueDescription string        `bson:"issue_description"`
	PickedUpAt       *int64        `bson:"picked_up_at,omitempty"`
	ReturnedAt       *int64        `bson:"returned_at,omitempty"`
	CreatedAt        int64         `bson:"created_at"`
	UpdatedAt        int64         `bson:"updated_at"`
	Version          int64         `bson:"version"`
}

type rangeDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:               string(b.ID),
		ItemID:           string(b.ItemID),
		RenterID:         b.RenterID,
		OwnerID:          b.OwnerID,
		Range:            rangeDocument{Start: b.Range.Start.UnixMilli(), End: b.Range.End.UnixMilli()},
		TotalDays:        b.TotalDays,
		TotalPrice:       b.TotalPrice,
		Deposit:          b.Deposit,
		Status:           string(b.Status),
		PaymentStatus:    string(b.PaymentStatus),
		PaymentID:        b.PaymentID,
		Notes:            b.Notes,
		IssueReported:    b.IssueReported,
		IssueDescription: b.IssueDescription,
		PickedUpAt:       timeToTimestamp(b.PickedUpAt),
		ReturnedAt:       timeToTimestamp(b.ReturnedAt),
		CreatedAt:        b.CreatedAt.UnixMilli(),
		UpdatedAt:        b.UpdatedAt.UnixMilli(),
		Version:          b.Version,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:               domainbooking.BookingID(d.ID),
		ItemID:           domaincatalog.ItemID(d.ItemID),
		RenterID:         d.RenterID,
		OwnerID:          d.OwnerID,
		Range:            domainrange.DateRange{Start: timestampToTime(d.Range.Start), End: timestampToTime(d.Range.End)},
		TotalDays:        d.TotalDays,
		TotalPrice:       d.TotalPrice,
		Deposit:          d.Deposit,
		Status:           domainbooking.Status(d.Status),
		PaymentStatus:    domainbooking.PaymentStatus(d.PaymentStatus),
		PaymentID:        d.PaymentID,
		Notes:            d.Notes,
		IssueReported:    d.IssueReported,
		IssueDescription: d.IssueDescription,
		PickedUpAt:       timestampToTimePtr(d.PickedUpAt),
		ReturnedAt:       timestampToTimePtr(d.ReturnedAt),
		CreatedAt:        timestampToTime(d.CreatedAt),
		UpdatedAt:        timestampToTime(d.UpdatedAt),
		Version:          d.Version,
	}
}

func timeToTimestamp(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func timestampToTimePtr(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}
