package gateway

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// ReceiptInput is an uploaded receipt image with fields already extracted
// by the vision API.
type ReceiptInput struct {
	TransactionID string         `json:"transactionId"`
	ImagePath     string         `json:"imagePath"`
	OCR           *model.OcrData `json:"ocrData"`
}

// ReceiptResult carries the stored receipt and the vision quota state.
type ReceiptResult struct {
	Receipt      *model.Receipt  `json:"receipt"`
	Usage        model.UsageInfo `json:"usage"`
	QuotaWarning bool            `json:"quotaWarning"`
}

// UploadReceipt stores a receipt under the advisory vision quota: the
// upload always proceeds and the result flags when the quota is exhausted.
func (g *Gateway) UploadReceipt(ctx context.Context, userID string, in ReceiptInput) (*ReceiptResult, error) {
	in.ImagePath = strings.TrimSpace(in.ImagePath)
	if in.ImagePath == "" {
		return nil, model.Errorf(model.ErrValidation, "imagePath is required")
	}

	receipt := &model.Receipt{
		UserID:        userID,
		TransactionID: in.TransactionID,
		ImagePath:     in.ImagePath,
		OCR:           in.OCR,
	}
	usage, err := g.Advisory(ctx, userID, model.APIVision, func(ctx context.Context) error {
		return g.store.CreateReceipt(ctx, receipt)
	})
	if err != nil {
		return nil, fmt.Errorf("upload receipt: %w", err)
	}
	receipt.ImageURL = receipt.ImagePath

	if usage.IsOverLimit {
		g.logger.Info("vision quota exhausted", "user_id", userID, "count", usage.Count, "limit", usage.Limit)
	}
	return &ReceiptResult{Receipt: receipt, Usage: usage, QuotaWarning: usage.IsOverLimit}, nil
}

// ListReceipts returns the user's receipts with signed image URLs. A receipt
// whose URL cannot be signed keeps its stored path.
func (g *Gateway) ListReceipts(ctx context.Context, userID string) ([]model.Receipt, error) {
	receipts, err := g.store.ListReceipts(ctx, userID)
	if err != nil {
		return nil, err
	}
	if receipts == nil {
		receipts = []model.Receipt{}
	}
	if g.signer == nil {
		return receipts, nil
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.signLimit)
	for i := range receipts {
		eg.Go(func() error {
			r := &receipts[i]
			signed, err := g.signer.SignURL(egctx, r.ImagePath)
			if err != nil {
				g.metrics.IncUpstreamError("storage")
				g.logger.Warn("sign receipt url", "receipt_id", r.ID, "error", err)
				r.ImageURL = r.ImagePath
				return nil
			}
			r.ImageURL = signed
			return nil
		})
	}
	_ = eg.Wait()
	return receipts, nil
}
