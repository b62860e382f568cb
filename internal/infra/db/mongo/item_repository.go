package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincatalog "lendly/internal/domain/catalog"
	domainrange "lendly/internal/domain/shared/daterange"
	"lendly/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type ItemRepository struct {
	col *mongo.Collection
}

func NewItemRepository(db *mongo.Database) *ItemRepository {
	col := db.Collection("agg_item")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "owner", Value: 1}}})
	return &ItemRepository{col: col}
}

func (r *ItemRepository) ByID(ctx context.Context, id domaincatalog.ItemID) (*domaincatalog.Item, error) {
	var doc itemDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincatalog.ErrItemNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save performs a conditional write keyed on the loaded version. A booked
// dates check followed by Reserve and Save therefore cannot interleave with
// another writer on the same item: the second Save misses the filter and
// fails with ErrConcurrentUpdate.
func (r *ItemRepository) Save(ctx context.Context, item *domaincatalog.Item) error {
	doc := newItemDocument(item)
	filter := bson.M{"_id": doc.ID, "version": item.Version}
	doc.Version = item.Version + 1
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
	item.Version = doc.Version
	return nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, owner string) ([]*domaincatalog.Item, error) {
	return r.find(ctx, bson.M{"owner": owner})
}

func (r *ItemRepository) List(ctx context.Context) ([]*domaincatalog.Item, error) {
	return r.find(ctx, bson.M{})
}

func (r *ItemRepository) find(ctx context.Context, filter bson.M) ([]*domaincatalog.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	items := make([]*domaincatalog.Item, 0)
	for cursor.Next(ctx) {
		var doc itemDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toAggregate())
	}
	return items, cursor.Err()
}

type itemDocument struct {
	ID            string                `bson:"_id"`
	Owner         string                `bson:"owner"`
	Title         string                `bson:"title"`
	Description   string                `bson:"description"`
	Category      string                `bson:"category"`
	PricePerDay   money.Money           `bson:"price_per_day"`
	PricePerWeek  money.Money           `bson:"price_per_week"`
	PricePerMonth money.Money           `bson:"price_per_month"`
	Deposit       money.Money           `bson:"deposit"`
	IsAvailable   bool                  `bson:"is_available"`
	BookedDates   []bookedRangeDocument `bson:"booked_dates"`
	Tags          []string              `bson:"tags"`
	CreatedAt     int64                 `bson:"created_at"`
	UpdatedAt     int64                 `bson:"updated_at"`
	Version       int64                 `bson:"version"`
}

type bookedRangeDocument struct {
	Start     int64  `bson:"start"`
	End       int64  `bson:"end"`
	BookingID string `bson:"booking_id"`
}

func newItemDocument(item *domaincatalog.Item) itemDocument {
	booked := make([]bookedRangeDocument, 0, len(item.BookedDates))
	for _, b := range item.BookedDates {
		booked = append(booked, bookedRangeDocument{
			Start:     b.Range.Start.UnixMilli(),
			End:       b.Range.End.UnixMilli(),
			BookingID: b.BookingID,
		})
	}
	return itemDocument{
		ID:            string(item.ID),
		Owner:         item.Owner,
		Title:         item.Title,
		Description:   item.Description,
		Category:      item.Category,
		PricePerDay:   item.PricePerDay,
		PricePerWeek:  item.PricePerWeek,
		PricePerMonth: item.PricePerMonth,
		Deposit:       item.Deposit,
		IsAvailable:   item.IsAvailable,
		BookedDates:   booked,
		Tags:          item.Tags,
		CreatedAt:     item.CreatedAt.UnixMilli(),
		UpdatedAt:     item.UpdatedAt.UnixMilli(),
		Version:       item.Version,
	}
}

func (d itemDocument) toAggregate() *domaincatalog.Item {
	booked := make([]domaincatalog.BookedRange, 0, len(d.BookedDates))
	for _, b := range d.BookedDates {
		booked = append(booked, domaincatalog.BookedRange{
			Range:     domainrange.DateRange{Start: timestampToTime(b.Start), End: timestampToTime(b.End)},
			BookingID: b.BookingID,
		})
	}
	return &domaincatalog.Item{
		ID:            domaincatalog.ItemID(d.ID),
		Owner:         d.Owner,
		Title:         d.Title,
		Description:   d.Description,
		Category:      d.Category,
		PricePerDay:   d.PricePerDay,
		PricePerWeek:  d.PricePerWeek,
		PricePerMonth: d.PricePerMonth,
		Deposit:       d.Deposit,
		IsAvailable:   d.IsAvailable,
		BookedDates:   booked,
		Tags:          d.Tags,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
		Version:       d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
