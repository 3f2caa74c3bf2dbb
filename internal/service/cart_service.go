package service

import (
	"context"
	"errors"
	"strings"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"
	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/model"
	"github.com/AriBaderkhan/seraj-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartService stages selections before checkout. Adding a line checks its
// shape against the item mode, never stock; stock is enforced at sale time.
type CartService interface {
	AddLine(ctx context.Context, req dto.AddCartLineRequest) (*dto.CartLineResponse, error)
	List(ctx context.Context) (*dto.CartResponse, error)
	RemoveItem(ctx context.Context, itemID uuid.UUID) (*dto.CartRemoveResponse, error)
	Clear(ctx context.Context) (*dto.CartRemoveResponse, error)
}

type cartService struct {
	cart    repository.CartRepository
	items   repository.ItemRepository
	devices repository.DeviceRepository
}

func NewCartService(cart repository.CartRepository, items repository.ItemRepository, devices repository.DeviceRepository) CartService {
	return &cartService{cart: cart, items: items, devices: devices}
}

func (s *cartService) AddLine(ctx context.Context, req dto.AddCartLineRequest) (*dto.CartLineResponse, error) {
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return nil, apierror.Validation("", "invalid item_id", map[string]string{"item_id": "uuid"})
	}
	item, err := s.items.FindByID(ctx, nil, itemID)
	if err != nil {
		return nil, apierror.FromStore(err, apierror.ReasonItemNotFound, "item not found")
	}

	var imei *string
	if req.IMEI != nil && strings.TrimSpace(*req.IMEI) != "" {
		v := strings.TrimSpace(*req.IMEI)
		imei = &v
	}
	switch item.Mode {
	case model.ModeSerialized:
		if imei == nil {
			return nil, apierror.Validation(apierror.ReasonImeiRequired,
				"serialized items are added by IMEI", map[string]string{"imei": "required"})
		}
		if req.Qty != 1 {
			return nil, apierror.Validation(apierror.ReasonInvalidMode,
				"a serialized line always has qty 1", map[string]string{"qty": "eq=1"})
		}
		// A unit may be scanned by either slot; the line always carries imei1.
		// Unknown IMEIs are staged as given and rejected at checkout.
		dev, err := s.devices.FindByItemAndIMEI(ctx, nil, item.ID, *imei)
		switch {
		case err == nil:
			imei = &dev.IMEI1
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apierror.Persistence(err)
		}
	case model.ModePooled:
		if imei != nil {
			return nil, apierror.Validation(apierror.ReasonImeiNotAllowed,
				"pooled items cannot carry an IMEI", map[string]string{"imei": "not allowed"})
		}
	}

	if imei != nil {
		inCart, err := s.cart.IMEIInCart(ctx, nil, *imei)
		if err != nil {
			return nil, apierror.Persistence(err)
		}
		if inCart {
			return nil, apierror.Conflict(apierror.ReasonImeiAlreadyInCart, "IMEI is already in the cart")
		}
	}

	name := strings.TrimSpace(req.ItemName)
	if name == "" {
		name = item.Name
	}
	line := &model.CartLine{
		ItemID:       item.ID,
		ItemName:     name,
		IMEI:         imei,
		Qty:          req.Qty,
		SellingPrice: req.SellingPrice,
		RowTotal:     req.SellingPrice.Mul(decimal.NewFromInt(int64(req.Qty))),
	}
	if err := s.cart.Create(ctx, nil, line); err != nil {
		err = apierror.FromStore(err, "", "")
		if apierror.IsReason(err, apierror.ReasonDuplicate) {
			return nil, apierror.Conflict(apierror.ReasonImeiAlreadyInCart, "IMEI is already in the cart")
		}
		return nil, err
	}
	resp := cartLineToResponse(line)
	return &resp, nil
}

// List aggregates lines per item. Output order is stable.
func (s *cartService) List(ctx context.Context) (*dto.CartResponse, error) {
	rows, err := s.cart.Grouped(ctx)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	resp := &dto.CartResponse{Items: make([]dto.CartGroup, 0, len(rows)), GrandTotal: decimal.Zero}
	for _, r := range rows {
		resp.Items = append(resp.Items, dto.CartGroup{
			ItemID:   r.ItemID.String(),
			ItemName: r.ItemName,
			Qty:      int(r.Qty),
			Total:    r.Total,
		})
		resp.GrandTotal = resp.GrandTotal.Add(r.Total)
	}
	return resp, nil
}

func (s *cartService) RemoveItem(ctx context.Context, itemID uuid.UUID) (*dto.CartRemoveResponse, error) {
	n, err := s.cart.DeleteByItem(ctx, nil, itemID)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return &dto.CartRemoveResponse{Removed: n}, nil
}

func (s *cartService) Clear(ctx context.Context) (*dto.CartRemoveResponse, error) {
	n, err := s.cart.Clear(ctx, nil)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return &dto.CartRemoveResponse{Removed: n}, nil
}
