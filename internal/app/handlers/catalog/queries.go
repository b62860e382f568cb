package catalog

import (
	"context"

	"lendly/internal/app/dto"
	handlersupport "lendly/internal/app/handlers/support"
	"lendly/internal/app/queries"
	"lendly/internal/app/uow"
	domaincatalog "lendly/internal/domain/catalog"
)

const (
	getItemKey   = "catalog.get_item"
	listItemsKey = "catalog.list_items"
)

type GetItemQuery struct {
	ItemID string
}

func (q GetItemQuery) Key() string { return getItemKey }

type GetItemHandler struct {
	UoWFactory uow.Factory
}

func (h *GetItemHandler) Handle(ctx context.Context, q GetItemQuery) (*dto.ItemView, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	item, err := unit.Items().ByID(ctx, domaincatalog.ItemID(q.ItemID))
	if err != nil {
		return nil, err
	}
	view := dto.MapItem(item)
	return &view, nil
}

type ListItemsQuery struct{}

func (q ListItemsQuery) Key() string { return listItemsKey }

type ListItemsHandler struct {
	UoWFactory uow.Factory
}

func (h *ListItemsHandler) Handle(ctx context.Context, q ListItemsQuery) (*dto.ItemCollection, error) {
	unit, ctx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Items().List(ctx)
	if err != nil {
		return nil, err
	}
	out := dto.MapItems(items)
	return &out, nil
}

var (
	_ queries.Handler[GetItemQuery, *dto.ItemView]        = (*GetItemHandler)(nil)
	_ queries.Handler[ListItemsQuery, *dto.ItemCollection] = (*ListItemsHandler)(nil)
)
