package respond_alternative

import (
	"context"

	respondAlternative "github.com/fairwaylabs/GLM-BookingService/internal/usecase/respond_alternative"
)

type RespondAlternativeUseCase interface {
	Execute(ctx context.Context, req *respondAlternative.Request) (*respondAlternative.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
