package transloadit

import "context"

// ClientAPI defines the assemblies operations used by the rest of the app.
// It mirrors the concrete client so it can be mocked in tests.
type ClientAPI interface {
	CreateAssembly(ctx context.Context, opts AssemblyOptions) (*Assembly, error)
	ReserveFile(ctx context.Context, assembly AssemblyRef, file FileRef) (Response, error)
	AddFile(ctx context.Context, assembly AssemblyRef, file FileRef) (Response, error)
	CancelAssembly(ctx context.Context, assembly AssemblyRef) (Response, error)
	GetAssemblyStatus(ctx context.Context, statusURL string) (Response, error)
}
