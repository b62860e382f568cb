package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lendly/internal/app/commands"
	handlersupport "lendly/internal/app/handlers/support"
	"lendly/internal/app/outbox"
	"lendly/internal/app/uow"
	domaincatalog "lendly/internal/domain/catalog"
	"lendly/internal/domain/shared/money"
)

const createItemKey = "catalog.create_item"

type CreateItemCommand struct {
	Owner         string
	Title         string
	Description   string
	Category      string
	PricePerDay   money.Money
	PricePerWeek  money.Money
	PricePerMonth money.Money
	Deposit       money.Money
	Tags          []string
}

func (c CreateItemCommand) Key() string { return createItemKey }

type CreateItemResult struct {
	ItemID string `json:"item_id"`
}

type CreateItemHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	NewID      func() string
}

func (h *CreateItemHandler) Handle(ctx context.Context, cmd CreateItemCommand) (*CreateItemResult, error) {
	item, err := domaincatalog.NewItem(domaincatalog.CreateItemParams{
		ID:            domaincatalog.ItemID(h.newID()),
		Owner:         cmd.Owner,
		Title:         cmd.Title,
		Description:   cmd.Description,
		Category:      cmd.Category,
		PricePerDay:   cmd.PricePerDay,
		PricePerWeek:  cmd.PricePerWeek,
		PricePerMonth: cmd.PricePerMonth,
		Deposit:       cmd.Deposit,
		Tags:          cmd.Tags,
		Now:           h.now(),
	})
	if err != nil {
		return nil, err
	}
	err = handlersupport.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		if err := unit.Items().Save(ctx, item); err != nil {
			return err
		}
		return outbox.Drain(ctx, h.Outbox, h.encoder(), item)
	})
	if err != nil {
		return nil, err
	}
	return &CreateItemResult{ItemID: string(item.ID)}, nil
}

func (h *CreateItemHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

func (h *CreateItemHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *CreateItemHandler) newID() string {
	if h.NewID != nil {
		return h.NewID()
	}
	return uuid.NewString()
}

var _ commands.Handler[CreateItemCommand, *CreateItemResult] = (*CreateItemHandler)(nil)
