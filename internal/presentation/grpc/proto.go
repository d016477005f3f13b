package grpc

// proto.go hand-writes the service descriptor for cardiorisk/v1/cardiorisk.proto.
// Messages travel as JSON through the codec registered in json_codec.go, so no
// generated protobuf types are needed.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "cardiorisk.v1.CardioRiskService"

// Full method names.
const (
	MethodPredict   = "/" + ServiceName + "/Predict"
	MethodGetSchema = "/" + ServiceName + "/GetSchema"
)

// CardioRiskServiceServer is the server API for CardioRiskService.
type CardioRiskServiceServer interface {
	Predict(context.Context, *PredictRequest) (*PredictResponse, error)
	GetSchema(context.Context, *GetSchemaRequest) (*GetSchemaResponse, error)
	mustEmbedUnimplementedCardioRiskServiceServer()
}

// UnimplementedCardioRiskServiceServer provides forward-compatible default implementations.
type UnimplementedCardioRiskServiceServer struct{}

func (UnimplementedCardioRiskServiceServer) Predict(context.Context, *PredictRequest) (*PredictResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Predict not implemented")
}
func (UnimplementedCardioRiskServiceServer) GetSchema(context.Context, *GetSchemaRequest) (*GetSchemaResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetSchema not implemented")
}
func (UnimplementedCardioRiskServiceServer) mustEmbedUnimplementedCardioRiskServiceServer() {}

// RegisterCardioRiskServiceServer registers srv with the gRPC server.
func RegisterCardioRiskServiceServer(s grpclib.ServiceRegistrar, srv CardioRiskServiceServer) {
	s.RegisterService(&_CardioRiskService_serviceDesc, srv)
}

var _CardioRiskService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CardioRiskServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Predict", Handler: _CardioRiskService_Predict_Handler},
		{MethodName: "GetSchema", Handler: _CardioRiskService_GetSchema_Handler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "cardiorisk/v1/cardiorisk.proto",
}

func _CardioRiskService_Predict_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(PredictRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CardioRiskServiceServer).Predict(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodPredict}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CardioRiskServiceServer).Predict(ctx, req.(*PredictRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _CardioRiskService_GetSchema_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(GetSchemaRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CardioRiskServiceServer).GetSchema(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodGetSchema}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CardioRiskServiceServer).GetSchema(ctx, req.(*GetSchemaRequest))
	}
	return interceptor(ctx, req, info, handler)
}
