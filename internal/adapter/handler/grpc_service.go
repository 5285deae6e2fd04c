package handler

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// JSONCodecName is the gRPC content-subtype the inventory service speaks.
// Clients must send grpc.CallContentSubtype(JSONCodecName).
const JSONCodecName = "json"

const inventoryServiceName = "inventory.v1.InventoryService"

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                               { return JSONCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type ApplyDeltaRequest struct {
	ItemID    string `json:"item_id"`
	Location  string `json:"location"`
	Delta     int32  `json:"delta"`
	RequestID string `json:"request_id,omitempty"`
}

type ApplyDeltaResponse struct {
	State    string       `json:"state"`
	Item     ItemDTO      `json:"item"`
	LogEntry *LogEntryDTO `json:"log_entry,omitempty"`
	Warning  string       `json:"warning,omitempty"`
}

type ListItemsRequest struct {
	Query     string `json:"query,omitempty"`
	EmptyOnly bool   `json:"empty_only,omitempty"`
}

type ListItemsResponse struct {
	Items []ItemDTO `json:"items"`
}

type FindByBarcodeRequest struct {
	Barcode string `json:"barcode"`
}

type InventoryServiceServer interface {
	ApplyDelta(ctx context.Context, req *ApplyDeltaRequest) (*ApplyDeltaResponse, error)
	ListItems(ctx context.Context, req *ListItemsRequest) (*ListItemsResponse, error)
	FindByBarcode(ctx context.Context, req *FindByBarcodeRequest) (*ItemDTO, error)
}

func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&inventoryServiceDesc, srv)
}

var inventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: inventoryServiceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ApplyDelta", Handler: unaryHandler("ApplyDelta", func(srv InventoryServiceServer, ctx context.Context, req *ApplyDeltaRequest) (interface{}, error) {
			return srv.ApplyDelta(ctx, req)
		})},
		{MethodName: "ListItems", Handler: unaryHandler("ListItems", func(srv InventoryServiceServer, ctx context.Context, req *ListItemsRequest) (interface{}, error) {
			return srv.ListItems(ctx, req)
		})},
		{MethodName: "FindByBarcode", Handler: unaryHandler("FindByBarcode", func(srv InventoryServiceServer, ctx context.Context, req *FindByBarcodeRequest) (interface{}, error) {
			return srv.FindByBarcode(ctx, req)
		})},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "inventory/v1/inventory.proto",
}

// unaryHandler adapts a typed method to grpc.MethodDesc.Handler.
func unaryHandler[Req any](method string, call func(InventoryServiceServer, context.Context, *Req) (interface{}, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(InventoryServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + inventoryServiceName + "/" + method,
		}
		return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(server, ctx, req.(*Req))
		})
	}
}

// InventoryServiceClient calls the inventory service over a JSON-coded
// connection.
type InventoryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryServiceClient(cc grpc.ClientConnInterface) *InventoryServiceClient {
	return &InventoryServiceClient{cc: cc}
}

func (c *InventoryServiceClient) ApplyDelta(ctx context.Context, in *ApplyDeltaRequest, opts ...grpc.CallOption) (*ApplyDeltaResponse, error) {
	out := new(ApplyDeltaResponse)
	if err := c.invoke(ctx, "ApplyDelta", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryServiceClient) ListItems(ctx context.Context, in *ListItemsRequest, opts ...grpc.CallOption) (*ListItemsResponse, error) {
	out := new(ListItemsResponse)
	if err := c.invoke(ctx, "ListItems", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryServiceClient) FindByBarcode(ctx context.Context, in *FindByBarcodeRequest, opts ...grpc.CallOption) (*ItemDTO, error) {
	out := new(ItemDTO)
	if err := c.invoke(ctx, "FindByBarcode", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryServiceClient) invoke(ctx context.Context, method string, in, out interface{}, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(JSONCodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+inventoryServiceName+"/"+method, in, out, opts...)
}
