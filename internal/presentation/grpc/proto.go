package grpc

// proto.go is the hand-maintained service descriptor for
// subjectivity.v1.SubjectivityService. Messages travel as JSON (see codec.go).

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const serviceName = "subjectivity.v1.SubjectivityService"

// Full method names.
const (
	MethodScore           = "/" + serviceName + "/Score"
	MethodAssessText      = "/" + serviceName + "/AssessText"
	MethodAssessBatch     = "/" + serviceName + "/AssessBatch"
	MethodGetAssessment   = "/" + serviceName + "/GetAssessment"
	MethodListAssessments = "/" + serviceName + "/ListAssessments"
)

// SubjectivityServiceServer is the server API for SubjectivityService.
type SubjectivityServiceServer interface {
	Score(context.Context, *ScoreRequest) (*ScoreResponse, error)
	AssessText(context.Context, *AssessTextRequest) (*AssessTextResponse, error)
	AssessBatch(context.Context, *AssessBatchRequest) (*AssessBatchResponse, error)
	GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error)
	ListAssessments(context.Context, *ListAssessmentsRequest) (*ListAssessmentsResponse, error)
	mustEmbedUnimplementedSubjectivityServiceServer()
}

// UnimplementedSubjectivityServiceServer provides forward-compatible default implementations.
type UnimplementedSubjectivityServiceServer struct{}

func (UnimplementedSubjectivityServiceServer) Score(context.Context, *ScoreRequest) (*ScoreResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Score not implemented")
}
func (UnimplementedSubjectivityServiceServer) AssessText(context.Context, *AssessTextRequest) (*AssessTextResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AssessText not implemented")
}
func (UnimplementedSubjectivityServiceServer) AssessBatch(context.Context, *AssessBatchRequest) (*AssessBatchResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AssessBatch not implemented")
}
func (UnimplementedSubjectivityServiceServer) GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAssessment not implemented")
}
func (UnimplementedSubjectivityServiceServer) ListAssessments(context.Context, *ListAssessmentsRequest) (*ListAssessmentsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListAssessments not implemented")
}
func (UnimplementedSubjectivityServiceServer) mustEmbedUnimplementedSubjectivityServiceServer() {}

// RegisterSubjectivityServiceServer registers srv with the gRPC server.
func RegisterSubjectivityServiceServer(s grpclib.ServiceRegistrar, srv SubjectivityServiceServer) {
	s.RegisterService(&subjectivityServiceDesc, srv)
}

var subjectivityServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SubjectivityServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Score", Handler: unaryHandler(MethodScore, SubjectivityServiceServer.Score)},
		{MethodName: "AssessText", Handler: unaryHandler(MethodAssessText, SubjectivityServiceServer.AssessText)},
		{MethodName: "AssessBatch", Handler: unaryHandler(MethodAssessBatch, SubjectivityServiceServer.AssessBatch)},
		{MethodName: "GetAssessment", Handler: unaryHandler(MethodGetAssessment, SubjectivityServiceServer.GetAssessment)},
		{MethodName: "ListAssessments", Handler: unaryHandler(MethodListAssessments, SubjectivityServiceServer.ListAssessments)},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "subjectivity/v1/subjectivity.proto",
}

// unaryHandler adapts a typed server method to grpc.MethodDesc, running the
// server's interceptor chain when one is installed.
func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(SubjectivityServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SubjectivityServiceServer), ctx, req)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(SubjectivityServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, req, info, handler)
	}
}
