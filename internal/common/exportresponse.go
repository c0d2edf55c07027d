package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jo-hoe/trademate/internal/export"
	"github.com/labstack/echo/v4"
)

const (
	MimePDF     = "application/pdf"
	PreviewPath = "/previews/"
)

// PreviewStore keeps finished documents for a single fetch.
type PreviewStore interface {
	StorePreview(ctx context.Context, pdf []byte) (string, error)
}

// ResponseOutput delivers export results through an echo response.
// Downloads are written as attachments, previews are parked in the store
// and answered with their URL by the caller.
type ResponseOutput struct {
	ctx   echo.Context
	store PreviewStore
}

func NewResponseOutput(ctx echo.Context, store PreviewStore) *ResponseOutput {
	return &ResponseOutput{ctx: ctx, store: store}
}

func (o *ResponseOutput) Save(_ context.Context, filename string, pdf []byte) error {
	o.ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return o.ctx.Blob(http.StatusOK, MimePDF, pdf)
}

func (o *ResponseOutput) Preview(ctx context.Context, pdf []byte) (string, error) {
	id, err := o.store.StorePreview(ctx, pdf)
	if err != nil {
		return "", err
	}
	return PreviewPath + id, nil
}

// Notice remembers the last message an export run reported.
type Notice struct {
	Message string
}

func (n *Notice) Notify(message string) {
	n.Message = message
}

// ExportError answers a failed export. A trigger that is still loading gets 409,
// every other failure the message the run reported. A response whose headers were
// already sent is left as it is.
func ExportError(ctx echo.Context, err error, notice *Notice) error {
	if ctx.Response().Committed {
		slog.Warn("export failed after the response was committed", "error", err)
		return nil
	}
	if errors.Is(err, export.ErrInProgress) {
		return ctx.String(http.StatusConflict, "An export of this kind is already running")
	}
	message := export.FailureMessage
	if notice != nil && notice.Message != "" {
		message = notice.Message
	}
	return ctx.String(http.StatusInternalServerError, message)
}
