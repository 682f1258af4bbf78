// Package shoppinglist is the remote mirror of a signed-in shopper's cart.
// Rows record presence only; every committed write is announced on the
// change feed.
package shoppinglist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smartcart/smartcart-backend/internal/catalog"
	"github.com/smartcart/smartcart-backend/internal/feed"
	"github.com/smartcart/smartcart-backend/pkg/db/models"
	"github.com/smartcart/smartcart-backend/pkg/enums"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

// Entry is one shopping list row, with its product when the reference
// resolves.
type Entry struct {
	ID         int64            `json:"id"`
	ShopperID  uuid.UUID        `json:"shopper_id"`
	ProductRef string           `json:"product_id"`
	Scanned    bool             `json:"scanned"`
	Product    *catalog.Product `json:"product,omitempty"`
}

// Store is the remote shopping list as used by the cart engine and the
// scanner.
type Store interface {
	Exists(ctx context.Context, shopperID uuid.UUID, ref string) (bool, error)
	Insert(ctx context.Context, shopperID uuid.UUID, ref string, scanned bool) (Entry, error)
	Delete(ctx context.Context, shopperID uuid.UUID, ref string) (int, error)
	Clear(ctx context.Context, shopperID uuid.UUID) (int, error)
	List(ctx context.Context, shopperID uuid.UUID) ([]Entry, error)
}

type service struct {
	repo      *Repository
	publisher feed.Publisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the shopping list store. Events are published after the
// write commits; a failed publish is logged and does not fail the write.
func NewService(repo *Repository, publisher feed.Publisher, logg *logger.Logger) (Store, error) {
	if repo == nil {
		return nil, fmt.Errorf("shopping list repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("feed publisher required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, publisher: publisher, logg: logg, now: time.Now}, nil
}

func validate(shopperID uuid.UUID, ref string) error {
	if shopperID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shopper id is required")
	}
	if strings.TrimSpace(ref) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product reference is required")
	}
	return nil
}

func (s *service) Exists(ctx context.Context, shopperID uuid.UUID, ref string) (bool, error) {
	if err := validate(shopperID, ref); err != nil {
		return false, err
	}
	ok, err := s.repo.Exists(ctx, shopperID, ref)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check shopping list")
	}
	return ok, nil
}

func (s *service) Insert(ctx context.Context, shopperID uuid.UUID, ref string, scanned bool) (Entry, error) {
	if err := validate(shopperID, ref); err != nil {
		return Entry{}, err
	}
	row, err := s.repo.Insert(ctx, shopperID, ref, scanned)
	if err != nil {
		return Entry{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert shopping list row")
	}
	s.publish(ctx, feed.Event{Type: enums.FeedEventInsert, New: rowImage(*row)})
	return toEntry(*row), nil
}

func (s *service) Delete(ctx context.Context, shopperID uuid.UUID, ref string) (int, error) {
	if err := validate(shopperID, ref); err != nil {
		return 0, err
	}
	rows, err := s.repo.DeleteByRef(ctx, shopperID, ref)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete shopping list rows")
	}
	s.publishDeletes(ctx, rows)
	return len(rows), nil
}

func (s *service) Clear(ctx context.Context, shopperID uuid.UUID) (int, error) {
	if shopperID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "shopper id is required")
	}
	rows, err := s.repo.DeleteAll(ctx, shopperID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear shopping list")
	}
	s.publishDeletes(ctx, rows)
	return len(rows), nil
}

func (s *service) List(ctx context.Context, shopperID uuid.UUID) ([]Entry, error) {
	if shopperID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shopper id is required")
	}
	rows, err := s.repo.List(ctx, shopperID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shopping list")
	}
	out := make([]Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, toEntry(row))
	}
	return out, nil
}

func (s *service) publishDeletes(ctx context.Context, rows []models.ShoppingListItem) {
	for _, row := range rows {
		s.publish(ctx, feed.Event{Type: enums.FeedEventDelete, Old: rowImage(row)})
	}
}

func (s *service) publish(ctx context.Context, ev feed.Event) {
	ev.Table = feed.TableShoppingList
	ev.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"shopper_id":  ev.ShopperID().String(),
			"product_ref": ev.ProductRef(),
			"event_type":  ev.Type.String(),
		})
		s.logg.Error(ctx, "failed to publish shopping list change", err)
	}
}

func rowImage(row models.ShoppingListItem) *feed.Row {
	return &feed.Row{ID: row.ID, ShopperID: row.ShopperID, ProductID: row.ProductID, Scanned: row.Scanned}
}

func toEntry(row models.ShoppingListItem) Entry {
	e := Entry{ID: row.ID, ShopperID: row.ShopperID, ProductRef: row.ProductID, Scanned: row.Scanned}
	if row.Product != nil {
		p := catalog.FromModel(*row.Product)
		e.Product = &p
	}
	return e
}
