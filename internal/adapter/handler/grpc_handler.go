package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/inventory-tracker/internal/core/domain"
	"github.com/rl1809/inventory-tracker/internal/core/service"
)

type GRPCHandler struct {
	stock     *service.StockService
	inventory *service.InventoryService
	tokens    SessionTokens
}

func NewGRPCHandler(stock *service.StockService, inventory *service.InventoryService, tokens SessionTokens) *GRPCHandler {
	return &GRPCHandler{stock: stock, inventory: inventory, tokens: tokens}
}

func (h *GRPCHandler) ApplyDelta(ctx context.Context, req *ApplyDeltaRequest) (*ApplyDeltaResponse, error) {
	session, err := h.session(ctx)
	if err != nil {
		return nil, grpcError(err)
	}

	var m *domain.Mutation
	if req.RequestID != "" {
		m, err = h.stock.ApplyDeltaOnce(ctx, session, req.RequestID, req.ItemID, int(req.Delta), req.Location)
	} else {
		m, err = h.stock.ApplyDelta(ctx, session, req.ItemID, int(req.Delta), req.Location)
	}
	if err != nil {
		return nil, grpcError(err)
	}

	dto := toMutationDTO(m)
	return &ApplyDeltaResponse{
		State:    dto.State,
		Item:     dto.Item,
		LogEntry: dto.LogEntry,
		Warning:  dto.Warning,
	}, nil
}

func (h *GRPCHandler) ListItems(ctx context.Context, req *ListItemsRequest) (*ListItemsResponse, error) {
	if _, err := h.session(ctx); err != nil {
		return nil, grpcError(err)
	}

	var (
		items []domain.Item
		err   error
	)
	if req.EmptyOnly {
		items, err = h.inventory.EmptyItems(ctx)
	} else {
		items, err = h.inventory.Search(ctx, req.Query)
	}
	if err != nil {
		return nil, grpcError(err)
	}
	return &ListItemsResponse{Items: toItemDTOs(items)}, nil
}

func (h *GRPCHandler) FindByBarcode(ctx context.Context, req *FindByBarcodeRequest) (*ItemDTO, error) {
	if _, err := h.session(ctx); err != nil {
		return nil, grpcError(err)
	}

	item, err := h.inventory.FindByBarcode(ctx, req.Barcode)
	if err != nil {
		return nil, grpcError(err)
	}
	dto := toItemDTO(item)
	return &dto, nil
}

func (h *GRPCHandler) session(ctx context.Context) (domain.Session, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return domain.Anonymous(), domain.ErrNotAuthenticated
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return domain.Anonymous(), domain.ErrNotAuthenticated
	}
	token := bearerToken(values[0])
	if token == "" {
		return domain.Anonymous(), domain.ErrNotAuthenticated
	}
	return h.tokens.Parse(token)
}

func grpcError(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, domain.ErrItemNotFound), errors.Is(err, domain.ErrLocationNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrInvalidDelta), errors.Is(err, domain.ErrImportFormat), errors.Is(err, domain.ErrInvalidSetting):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		code = codes.Unauthenticated
	case errors.Is(err, domain.ErrNotAuthorized):
		code = codes.PermissionDenied
	case errors.Is(err, domain.ErrDuplicateRequest):
		code = codes.AlreadyExists
	case errors.Is(err, domain.ErrTimeout):
		code = codes.DeadlineExceeded
	case errors.Is(err, domain.ErrPersistence):
		code = codes.Unavailable
	}
	return status.Error(code, err.Error())
}
