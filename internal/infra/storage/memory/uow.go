package memory

import (
	"context"
	"errors"
	"sync"

	"lendly/internal/app/uow"
	domainbooking "lendly/internal/domain/booking"
	domaincatalog "lendly/internal/domain/catalog"
	domainuser "lendly/internal/domain/user"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// commitMu serializes commits so one unit's verify-then-apply window cannot
// interleave with another unit's writes.
var commitMu sync.Mutex

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	ItemRepo    *ItemRepository
	BookingRepo *BookingRepository
	UserRepo    *UserRepository
}

// Begin starts a staged transaction boundary. Saves are buffered inside the
// unit and hit the stores only on Commit, so a conditional write that loses
// its version race cannot leave earlier writes from the same unit behind.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ItemRepo == nil || f.BookingRepo == nil || f.UserRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{factory: f}, nil
}

// Unit buffers writes until Commit. Reads go straight to the repositories;
// saves are verified eagerly so stale writers fail fast, then re-verified
// and applied together under the commit lock.
type Unit struct {
	factory Factory
	writes  []stagedWrite
}

type stagedWrite struct {
	verify func() error
	apply  func(ctx context.Context) error
}

func (u *Unit) Items() domaincatalog.Repository    { return stagedItems{u} }
func (u *Unit) Bookings() domainbooking.Repository { return stagedBookings{u} }
func (u *Unit) Users() domainuser.Repository       { return stagedUsers{u} }

func (u *Unit) stage(w stagedWrite) error {
	if err := w.verify(); err != nil {
		return err
	}
	u.writes = append(u.writes, w)
	return nil
}

// Commit re-verifies every staged write, then applies them all. A conflict
// found in the verify pass aborts before anything is written.
func (u *Unit) Commit(ctx context.Context) error {
	commitMu.Lock()
	defer commitMu.Unlock()
	defer func() { u.writes = nil }()
	for _, w := range u.writes {
		if err := w.verify(); err != nil {
			return err
		}
	}
	for _, w := range u.writes {
		if err := w.apply(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.writes = nil
	return nil
}

type stagedItems struct{ u *Unit }

func (r stagedItems) ByID(ctx context.Context, id domaincatalog.ItemID) (*domaincatalog.Item, error) {
	return r.u.factory.ItemRepo.ByID(ctx, id)
}

func (r stagedItems) ListByOwner(ctx context.Context, owner string) ([]*domaincatalog.Item, error) {
	return r.u.factory.ItemRepo.ListByOwner(ctx, owner)
}

func (r stagedItems) List(ctx context.Context) ([]*domaincatalog.Item, error) {
	return r.u.factory.ItemRepo.List(ctx)
}

func (r stagedItems) Save(ctx context.Context, item *domaincatalog.Item) error {
	repo := r.u.factory.ItemRepo
	return r.u.stage(stagedWrite{
		verify: func() error { return repo.checkVersion(item) },
		apply:  func(ctx context.Context) error { return repo.Save(ctx, item) },
	})
}

type stagedBookings struct{ u *Unit }

func (r stagedBookings) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	return r.u.factory.BookingRepo.ByID(ctx, id)
}

func (r stagedBookings) ListByRenter(ctx context.Context, renterID string) ([]*domainbooking.Booking, error) {
	return r.u.factory.BookingRepo.ListByRenter(ctx, renterID)
}

func (r stagedBookings) ListByOwner(ctx context.Context, ownerID string) ([]*domainbooking.Booking, error) {
	return r.u.factory.BookingRepo.ListByOwner(ctx, ownerID)
}

func (r stagedBookings) Save(ctx context.Context, b *domainbooking.Booking) error {
	repo := r.u.factory.BookingRepo
	return r.u.stage(stagedWrite{
		verify: func() error { return repo.checkVersion(b) },
		apply:  func(ctx context.Context) error { return repo.Save(ctx, b) },
	})
}

type stagedUsers struct{ u *Unit }

func (r stagedUsers) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	return r.u.factory.UserRepo.ByID(ctx, id)
}

func (r stagedUsers) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	return r.u.factory.UserRepo.ByEmail(ctx, email)
}

func (r stagedUsers) Save(ctx context.Context, user *domainuser.User) error {
	repo := r.u.factory.UserRepo
	return r.u.stage(stagedWrite{
		verify: func() error { return repo.checkConflict(user) },
		apply:  func(ctx context.Context) error { return repo.Save(ctx, user) },
	})
}
