package service

import (
	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/model"
)

func itemToResponse(it *model.Item) dto.ItemResponse {
	return dto.ItemResponse{
		ID:         it.ID.String(),
		Name:       it.Name,
		BrandID:    it.BrandID.String(),
		CategoryID: it.CategoryID.String(),
		Mode:       it.Mode,
		StockQty:   it.StockQty,
		Details:    it.Details,
		ImagePath:  it.ImagePath,
		SerialNo:   it.SerialNo,
		Storage:    it.Storage,
		SimType:    it.SimType,
		Color:      it.Color,
		CreatedAt:  it.CreatedAt,
		UpdatedAt:  it.UpdatedAt,
	}
}

func deviceToResponse(d *model.DeviceUnit) dto.DeviceResponse {
	resp := dto.DeviceResponse{
		ID:              d.ID.String(),
		ItemID:          d.ItemID.String(),
		PurchaseBatchID: d.PurchaseBatchID.String(),
		IMEI1:           d.IMEI1,
		IMEI2:           d.IMEI2,
		PurchasePrice:   d.PurchasePrice,
		SellingPrice:    d.SellingPrice,
		WarrantyMonth:   d.WarrantyMonth,
		Detail:          d.Detail,
		Status:          d.Status,
		CreatedAt:       d.CreatedAt,
	}
	if d.PurchaseBatch != nil {
		resp.PurchaseNotes = d.PurchaseBatch.Notes
	}
	return resp
}

func batchLineToResponse(l *model.PooledBatchLine) dto.BatchLineResponse {
	resp := dto.BatchLineResponse{
		ID:              l.ID.String(),
		ItemID:          l.ItemID.String(),
		PurchaseBatchID: l.PurchaseBatchID.String(),
		Qty:             l.Qty,
		UnitCost:        l.UnitCost,
		UnitSellPrice:   l.UnitSellPrice,
		Detail:          l.Detail,
		CreatedAt:       l.CreatedAt,
	}
	if l.PurchaseBatch != nil {
		resp.PurchaseNotes = l.PurchaseBatch.Notes
	}
	return resp
}

func cartLineToResponse(l *model.CartLine) dto.CartLineResponse {
	return dto.CartLineResponse{
		ID:           l.ID.String(),
		ItemID:       l.ItemID.String(),
		ItemName:     l.ItemName,
		IMEI:         l.IMEI,
		Qty:          l.Qty,
		SellingPrice: l.SellingPrice,
		RowTotal:     l.RowTotal,
		CreatedAt:    l.CreatedAt,
	}
}

func saleToResponse(s *model.Sale) dto.SaleResponse {
	resp := dto.SaleResponse{
		ID:            s.ID.String(),
		CustomerName:  s.CustomerName,
		TotalAmount:   s.TotalAmount,
		TotalPaid:     s.TotalPaid,
		PaymentMethod: s.PaymentMethod,
		SoldBy:        s.SoldBy,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	for i := range s.Lines {
		l := &s.Lines[i]
		resp.Lines = append(resp.Lines, dto.SaleLineResponse{
			ID:            l.ID.String(),
			ItemID:        l.ItemID.String(),
			ItemName:      l.ItemName,
			Qty:           l.Qty,
			UnitPrice:     l.UnitPrice,
			LineTotal:     l.LineTotal(),
			IMEI:          l.IMEI,
			WarrantyStart: l.WarrantyStart,
			WarrantyEnd:   l.WarrantyEnd,
		})
	}
	return resp
}

func buildReceipt(storeName, storeAddress string, s *model.Sale) dto.Receipt {
	r := dto.Receipt{
		StoreName:     storeName,
		StoreAddress:  storeAddress,
		SaleID:        s.ID.String(),
		CustomerName:  s.CustomerName,
		Lines:         make([]dto.ReceiptLine, 0, len(s.Lines)),
		TotalAmount:   s.TotalAmount,
		TotalPaid:     s.TotalPaid,
		PaymentMethod: s.PaymentMethod,
		SaleDate:      s.CreatedAt,
	}
	for _, l := range s.Lines {
		r.Lines = append(r.Lines, dto.ReceiptLine{
			ItemName:    l.ItemName,
			Qty:         l.Qty,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal(),
			IMEI:        l.IMEI,
			WarrantyEnd: l.WarrantyEnd,
		})
	}
	return r
}
